package internaldefs

import (
	goTenant "github.com/MrEthical07/goTenant"
)

// Def names one engine metric for export.
type Def struct {
	ID   goTenant.MetricID
	Name string
	Help string
}

// Counters lists every exported counter in output order.
var Counters = []Def{
	{ID: goTenant.MetricSignupSuccess, Name: "gotenant_signup_success_total", Help: "Identities created."},
	{ID: goTenant.MetricSignupDuplicate, Name: "gotenant_signup_duplicate_total", Help: "Signups rejected because the email is taken."},
	{ID: goTenant.MetricSignupFailure, Name: "gotenant_signup_failure_total", Help: "Signups rejected for any other reason."},
	{ID: goTenant.MetricSigninSuccess, Name: "gotenant_signin_success_total", Help: "Successful signins."},
	{ID: goTenant.MetricSigninFailure, Name: "gotenant_signin_failure_total", Help: "Failed signins."},
	{ID: goTenant.MetricRefreshSuccess, Name: "gotenant_refresh_success_total", Help: "Access tokens issued from a refresh token."},
	{ID: goTenant.MetricRefreshFailure, Name: "gotenant_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: goTenant.MetricRefreshSuperseded, Name: "gotenant_refresh_superseded_total", Help: "Refresh tokens rejected because another one is stored."},
	{ID: goTenant.MetricRefreshRotated, Name: "gotenant_refresh_rotated_total", Help: "Refresh tokens replaced on use."},
	{ID: goTenant.MetricRevokeSuccess, Name: "gotenant_revoke_success_total", Help: "Refresh sessions deleted."},
	{ID: goTenant.MetricRevokeNoop, Name: "gotenant_revoke_noop_total", Help: "Revoke calls ignored for unverifiable tokens."},
	{ID: goTenant.MetricAuthenticateSuccess, Name: "gotenant_authenticate_success_total", Help: "Access tokens accepted by the guard."},
	{ID: goTenant.MetricAuthenticateFailure, Name: "gotenant_authenticate_failure_total", Help: "Access tokens rejected by the guard."},
	{ID: goTenant.MetricRoleDenied, Name: "gotenant_role_denied_total", Help: "Requests rejected by the role gate."},
	{ID: goTenant.MetricStoreFailure, Name: "gotenant_store_failure_total", Help: "Identity or session store errors."},
}

// Histograms lists exported latency histograms.
var Histograms = []Def{
	{ID: goTenant.MetricAuthenticateLatency, Name: "gotenant_authenticate_latency_seconds", Help: "Authenticate latency."},
}

// AuditDroppedName is the counter for events lost to dispatcher backpressure.
const AuditDroppedName = "gotenant_audit_dropped_total"

// BucketCount matches the engine histogram layout.
const BucketCount = 8

// Bounds are the Prometheus "le" labels for each engine bucket.
var Bounds = [BucketCount]string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// BoundSuffix is the instrument-name-safe form of Bounds.
var BoundSuffix = [BucketCount]string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// Cumulative pads raw to BucketCount and turns per-bucket counts into running
// totals.
func Cumulative(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < BucketCount; i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
