package metrics

import "time"

// NoopRecorder discards every observation. Used when metrics are
// disabled so call sites stay unconditional.
type NoopRecorder struct{}

var _ Recorder = (*NoopRecorder)(nil)

func NewNoopRecorder() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) RecordTokenIssued(category, grantType string, duration time.Duration) {}
func (n *NoopRecorder) RecordTokenRefresh(success bool)                                      {}
func (n *NoopRecorder) RecordTokenRevoked(category, reason string)                           {}
func (n *NoopRecorder) RecordTokenValidation(result string, duration time.Duration)          {}
func (n *NoopRecorder) RecordAuthorizationRequest(result string)                             {}
func (n *NoopRecorder) RecordLogin(method string, success bool)                              {}
func (n *NoopRecorder) RecordLogout()                                                        {}
func (n *NoopRecorder) RecordUserInfoRequest(result string)                                  {}
func (n *NoopRecorder) RecordArtifactsPurged(count int64)                                    {}
func (n *NoopRecorder) RecordHRISSync(success bool, duration time.Duration)                  {}
func (n *NoopRecorder) SetActiveArtifacts(kind string, count int64)                          {}
