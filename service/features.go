package service

import (
	"context"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/rtt"
)

// assembleFeatures builds the signal bundle for a first-pass authentication
// attempt. An unset rtt attribute is an empty signal, never a failure.
func (s *LoginService) assembleFeatures(ctx context.Context, req LoginRequest) *core.FeatureBundle {
	rttValue, err := s.store.Get(ctx, req.SessionKey, rtt.SessionAttr)
	if err != nil {
		rttValue = ""
	}

	return &core.FeatureBundle{
		IP:        req.ClientIP,
		UserAgent: req.UserAgent,
		RTT:       rttValue,
	}
}
