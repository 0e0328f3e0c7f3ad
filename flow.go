package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/daon-network/sessionkit/authapi"
	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// FlowStage is a login attempt's position in the magic-link exchange.
type FlowStage uint8

const (
	// StageStart is the initial stage; only RequestLink and VerifyLink are
	// permitted (a link may be opened in a context that never requested it).
	StageStart FlowStage = iota
	// StageLinkSent follows a successful magic-link request.
	StageLinkSent
	// StageSecondFactor awaits a time-based or backup code.
	StageSecondFactor
	// StageSecondFactorSetup awaits first-time second-factor enrollment.
	StageSecondFactorSetup
	// StageAuthenticated is terminal for the attempt; the session now lives
	// on the Coordinator.
	StageAuthenticated
)

func (s FlowStage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageLinkSent:
		return "link_sent"
	case StageSecondFactor:
		return "second_factor"
	case StageSecondFactorSetup:
		return "second_factor_setup"
	case StageAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// VerifyOutcome reports where a link verification landed: either the session
// is authenticated, or a second factor must be completed or enrolled first.
type VerifyOutcome struct {
	Authenticated             bool
	SecondFactorRequired      bool
	SecondFactorSetupRequired bool
}

// LoginFlow drives one login attempt: magic link, then an optional second
// factor, then a durable session installed on the Coordinator. A flow is
// ephemeral and independent of the session state machine — abandoning it
// mutates nothing. Each attempt needs its own LoginFlow; safe for concurrent
// use, though a login attempt is naturally sequential.
//
// No durable credential exists until the flow reaches StageAuthenticated;
// intermediate stages hold only a short-lived pending-session identifier.
type LoginFlow struct {
	coord *Coordinator

	mu             sync.Mutex
	stage          FlowStage
	pendingSession string
}

// NewLoginFlow begins a fresh login attempt.
func (c *Coordinator) NewLoginFlow() *LoginFlow {
	return &LoginFlow{coord: c}
}

// Stage returns the attempt's current stage.
func (f *LoginFlow) Stage() FlowStage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// RequestLink asks the server to mail a one-time login link. The transition
// to StageLinkSent happens whether or not the address belongs to an account;
// the server's response is symmetric to resist enumeration. Rate limiting
// and malformed addresses surface as errors and keep the stage at StageStart.
func (f *LoginFlow) RequestLink(ctx context.Context, email string) error {
	f.mu.Lock()
	if f.stage != StageStart && f.stage != StageLinkSent {
		f.mu.Unlock()
		return ErrFlowStage
	}
	f.mu.Unlock()

	if err := f.coord.api.RequestMagicLink(ctx, email); err != nil {
		f.coord.metricInc(MetricLinkRequestFailed)
		f.coord.emitAudit(ctx, internalaudit.EventLinkRequested, false, "", err, nil)
		return err
	}

	f.mu.Lock()
	f.stage = StageLinkSent
	f.mu.Unlock()

	f.coord.metricInc(MetricLinkRequested)
	f.coord.emitAudit(ctx, internalaudit.EventLinkRequested, true, "", nil, nil)
	return nil
}

// VerifyLink exchanges the one-time token carried by a magic link. When the
// user has no second factor, or the device descriptor matches a server-side
// trust window, the flow completes immediately and the session is installed.
// Otherwise the outcome demands completing or enrolling a second factor and
// the flow holds a pending-session identifier in place of credentials.
//
// An invalid or already-consumed token resets the flow to StageStart.
func (f *LoginFlow) VerifyLink(ctx context.Context, token string) (VerifyOutcome, error) {
	f.mu.Lock()
	if f.stage != StageStart && f.stage != StageLinkSent {
		f.mu.Unlock()
		return VerifyOutcome{}, ErrFlowStage
	}
	f.mu.Unlock()

	result, err := f.coord.api.VerifyMagicLink(ctx, token, f.coord.descriptor(ctx))
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredLink) {
			f.mu.Lock()
			f.stage = StageStart
			f.pendingSession = ""
			f.mu.Unlock()
			f.coord.metricInc(MetricLinkRejected)
		}
		f.coord.emitAudit(ctx, internalaudit.EventLinkVerified, false, "", err, nil)
		return VerifyOutcome{}, err
	}

	f.coord.metricInc(MetricLinkVerified)

	if result.Grant != nil {
		return f.complete(ctx, result.Grant)
	}

	if result.PendingSession == "" {
		// No grant and nothing to complete: a shape the flow cannot act on.
		return VerifyOutcome{}, fmt.Errorf("%w: verify response carries neither a grant nor a pending session", ErrServer)
	}

	switch result.SecondFactorState {
	case authapi.SecondFactorSetupRequired:
		f.mu.Lock()
		f.stage = StageSecondFactorSetup
		f.pendingSession = result.PendingSession
		f.mu.Unlock()
		f.coord.metricInc(MetricSecondFactorSetupRequired)
		f.coord.emitAudit(ctx, internalaudit.EventSecondFactorRequired, true, "", nil, func() map[string]string {
			return map[string]string{"state": authapi.SecondFactorSetupRequired}
		})
		return VerifyOutcome{SecondFactorSetupRequired: true}, nil
	case authapi.SecondFactorRequired:
		f.mu.Lock()
		f.stage = StageSecondFactor
		f.pendingSession = result.PendingSession
		f.mu.Unlock()
		f.coord.metricInc(MetricSecondFactorRequired)
		f.coord.emitAudit(ctx, internalaudit.EventSecondFactorRequired, true, "", nil, func() map[string]string {
			return map[string]string{"state": authapi.SecondFactorRequired}
		})
		return VerifyOutcome{SecondFactorRequired: true}, nil
	default:
		// Entering the second-factor stage on an unrecognized demand would
		// park the flow with nothing to complete.
		return VerifyOutcome{}, fmt.Errorf("%w: unrecognized second factor state %q", ErrServer, result.SecondFactorState)
	}
}

// BeginSecondFactorSetup fetches provisioning data (secret and otpauth URI)
// for first-time enrollment. Only valid at StageSecondFactorSetup.
func (f *LoginFlow) BeginSecondFactorSetup(ctx context.Context) (*SecondFactorProvision, error) {
	f.mu.Lock()
	if f.stage != StageSecondFactorSetup {
		f.mu.Unlock()
		return nil, ErrFlowStage
	}
	pending := f.pendingSession
	f.mu.Unlock()

	return f.coord.api.BeginSecondFactorSetup(ctx, pending)
}

// CompleteSecondFactorSetup proves possession of the freshly provisioned
// secret and completes the attempt. backupAck acknowledges that backup codes
// were presented and stored by the user. An invalid code keeps the stage so
// the user may retry; retry limits are the server's.
func (f *LoginFlow) CompleteSecondFactorSetup(ctx context.Context, code string, backupAck bool) error {
	f.mu.Lock()
	if f.stage != StageSecondFactorSetup {
		f.mu.Unlock()
		return ErrFlowStage
	}
	pending := f.pendingSession
	f.mu.Unlock()

	grant, err := f.coord.api.CompleteSecondFactorSetup(ctx, pending, code, backupAck)
	if err != nil {
		return f.secondFactorFailure(ctx, err)
	}
	_, err = f.complete(ctx, grant)
	return err
}

// CompleteSecondFactor exchanges the pending session plus a time-based or
// backup code for durable credentials. An invalid code keeps the flow at
// StageSecondFactor for bounded retries (the lockout count is enforced
// server-side); an expired pending session resets the flow to StageStart.
func (f *LoginFlow) CompleteSecondFactor(ctx context.Context, code string) error {
	f.mu.Lock()
	if f.stage != StageSecondFactor {
		f.mu.Unlock()
		return ErrFlowStage
	}
	pending := f.pendingSession
	f.mu.Unlock()

	grant, err := f.coord.api.CompleteSecondFactor(ctx, pending, code)
	if err != nil {
		return f.secondFactorFailure(ctx, err)
	}
	_, err = f.complete(ctx, grant)
	return err
}

func (f *LoginFlow) secondFactorFailure(ctx context.Context, err error) error {
	if errors.Is(err, ErrPendingSessionExpired) {
		f.mu.Lock()
		f.stage = StageStart
		f.pendingSession = ""
		f.mu.Unlock()
	}
	f.coord.metricInc(MetricSecondFactorFailure)
	f.coord.emitAudit(ctx, internalaudit.EventSecondFactorFailure, false, "", err, nil)
	return err
}

func (f *LoginFlow) complete(ctx context.Context, grant *authapi.Grant) (VerifyOutcome, error) {
	if err := f.coord.ApplyLogin(ctx, grant.User, grant.AccessToken, grant.RefreshToken); err != nil {
		return VerifyOutcome{}, err
	}
	f.mu.Lock()
	viaSecondFactor := f.stage == StageSecondFactor || f.stage == StageSecondFactorSetup
	f.stage = StageAuthenticated
	f.pendingSession = ""
	f.mu.Unlock()
	if viaSecondFactor {
		f.coord.metricInc(MetricSecondFactorSuccess)
	}
	return VerifyOutcome{Authenticated: true}, nil
}
