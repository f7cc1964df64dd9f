package claims_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/policy"
	"github.com/coverline/claims-engine/store/memory"
)

func money(v float64) policy.Money { return policy.NewMoney(v) }

var insurer = claims.Actor{ID: "ins-1", Role: claims.RoleInsurer}

// seedPolicy stores a life policy with a 20000 hospitalization limit for
// user-1 and 15000 already claimed against it, leaving 5000 remaining.
func seedPolicy(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	p := &policy.Policy{
		ID:     "pol-1",
		Number: "LIFE-1001",
		Line:   policy.LineLife,
		Coverage: policy.Coverage{
			CoverageAmount: money(20000),
			CoverageDetails: []policy.CoverageDetail{
				{Type: policy.CoverageHospitalization, Limit: money(20000)},
			},
		},
		Beneficiaries: []policy.BeneficiaryID{"user-1"},
	}
	require.NoError(t, store.CreatePolicy(ctx, p))

	loaded, err := store.GetPolicy(ctx, "pol-1")
	require.NoError(t, err)
	require.NoError(t, policy.NewLedger(loaded).AddClaimedAmount("user-1", policy.CoverageHospitalization, money(15000)))
	require.NoError(t, store.SavePolicy(ctx, loaded))
}

// forwardedClaim builds a hospitalization claim sitting with the insurer.
func forwardedClaim(requested float64) *claims.Claim {
	c := claims.NewClaim("user-1", "pol-1", claims.TypeLife, testTime)
	c.Option = claims.OptionHospitalization
	c.Status = claims.StatusForwardedToInsurer
	c.Amount.Requested = money(requested)
	return c
}

func remainingHospitalization(t *testing.T, store *memory.Store) policy.Money {
	t.Helper()
	p, err := store.GetPolicy(context.Background(), "pol-1")
	require.NoError(t, err)
	return policy.NewLedger(p).RemainingCoverage("user-1", policy.CoverageHospitalization)
}

// =============================================================================
// APPROVAL AGAINST THE LEDGER
// =============================================================================

func TestDecide_ApprovalWithinRemainingCoverage(t *testing.T) {
	// GIVEN: 5000 remaining and a 4000 claim forwarded to the insurer
	// WHEN: The insurer approves
	// THEN: The claim is approved and the ledger charges 4000

	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
	require.NoError(t, err)

	assert.Equal(t, claims.StatusApproved, c.Status)
	assert.True(t, c.Amount.Approved.Equal(money(4000)))
	require.NotNil(t, c.DecidedAt)
	assert.True(t, remainingHospitalization(t, store).Equal(money(1000)))
}

func TestDecide_ApprovalBeyondRemainingCoverage(t *testing.T) {
	// GIVEN: 5000 remaining and a 6000 claim
	// WHEN: The insurer approves
	// THEN: CoverageExceededError with the exact remaining balance; the
	//       claim stays with the insurer and the ledger is untouched

	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(6000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)

	var exceeded *policy.CoverageExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, policy.CoverageHospitalization, exceeded.CoverageType)
	assert.True(t, exceeded.Remaining.Equal(money(5000)))
	assert.True(t, exceeded.Requested.Equal(money(6000)))

	assert.Equal(t, claims.StatusForwardedToInsurer, c.Status)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))
}

func TestDecide_ApprovedAmountOverridesRequested(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(6000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, money(4500), "", testTime)
	require.NoError(t, err)

	assert.True(t, c.Amount.Approved.Equal(money(4500)))
	assert.True(t, remainingHospitalization(t, store).Equal(money(500)))
}

// =============================================================================
// BREAKDOWN: ALL-OR-NOTHING
// =============================================================================

func TestDecide_BreakdownFailureLeavesLedgerUntouched(t *testing.T) {
	// GIVEN: A breakdown whose first item fits but whose second charges a
	//        coverage type with no limit on this policy
	// WHEN: The insurer approves
	// THEN: Nothing is persisted; the fitting first item is rolled back
	//       with the rest

	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(5000)
	c.CoverageBreakdown = []claims.BreakdownItem{
		{CoverageType: policy.CoverageHospitalization, RequestedAmount: money(4000)},
		{CoverageType: policy.CoverageMedication, RequestedAmount: money(1000)},
	}

	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
	require.ErrorIs(t, err, policy.ErrCoverageExceeded)

	assert.Equal(t, claims.StatusForwardedToInsurer, c.Status)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))

	p, err := store.GetPolicy(context.Background(), "pol-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Version, "no save happened")
}

func TestDecide_OverlappingBreakdownItemsValidatedCumulatively(t *testing.T) {
	// Two items on the same coverage type that fit individually but not
	// together must be rejected as a whole.

	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(6000)
	c.CoverageBreakdown = []claims.BreakdownItem{
		{CoverageType: policy.CoverageHospitalization, RequestedAmount: money(3000)},
		{CoverageType: policy.CoverageHospitalization, RequestedAmount: money(3000)},
	}

	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
	require.ErrorIs(t, err, policy.ErrCoverageExceeded)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))
}

// =============================================================================
// REJECTION AND RETURN
// =============================================================================

func TestDecide_RejectionRequiresReason(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionRejected, policy.ZeroMoney(), "", testTime)

	assert.ErrorIs(t, err, claims.ErrValidation)
	assert.Equal(t, claims.StatusForwardedToInsurer, c.Status)
}

func TestDecide_RejectionNeverTouchesLedger(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionRejected, policy.ZeroMoney(), "not covered under this plan", testTime)
	require.NoError(t, err)

	assert.Equal(t, claims.StatusRejected, c.Status)
	assert.Equal(t, "not covered under this plan", c.RejectionReason)
	require.NotNil(t, c.DecidedAt)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))
}

func TestDecide_ReturnForMoreInformation(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	err := engine.Decide(context.Background(), c, insurer, claims.DecisionReturned, policy.ZeroMoney(), "need itemized bill", testTime)
	require.NoError(t, err)

	assert.Equal(t, claims.StatusReturnedToEmployee, c.Status)
	assert.Nil(t, c.DecidedAt, "a return is not a decision")
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))
}

func TestDecide_WrongStatusRejected(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	c.Status = claims.StatusSubmitted

	err := engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
	assert.ErrorIs(t, err, claims.ErrIllegalTransition)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)))
}

func TestDecide_NonInsurerCannotApprove(t *testing.T) {
	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	c := forwardedClaim(4000)
	hr := claims.Actor{ID: "hr-1", Role: claims.RoleHR}

	err := engine.Decide(context.Background(), c, hr, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
	assert.ErrorIs(t, err, claims.ErrAuthorization)
	assert.True(t, remainingHospitalization(t, store).Equal(money(5000)), "denied approval leaves no side effect")
}

// =============================================================================
// CONCURRENT APPROVALS
// =============================================================================

func TestDecide_ConcurrentApprovals_ExactlyOneWins(t *testing.T) {
	// GIVEN: 5000 remaining and two forwarded claims for 4000 and 3000,
	//        each of which fits alone but not alongside the other
	// WHEN: Two insurers approve concurrently
	// THEN: Exactly one approval commits; the loser revalidates against the
	//       updated balance and surfaces CoverageExceededError

	store := memory.New()
	seedPolicy(t, store)
	engine := claims.NewDecisionEngine(store)

	a := forwardedClaim(4000)
	b := forwardedClaim(3000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []*claims.Claim{a, b} {
		wg.Add(1)
		go func(i int, c *claims.Claim) {
			defer wg.Done()
			errs[i] = engine.Decide(context.Background(), c, insurer, claims.DecisionApproved, policy.ZeroMoney(), "", testTime)
		}(i, c)
	}
	wg.Wait()

	var approved, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			approved++
		default:
			require.ErrorIs(t, err, policy.ErrCoverageExceeded)
			exceeded++
		}
	}
	assert.Equal(t, 1, approved, "exactly one approval commits")
	assert.Equal(t, 1, exceeded)

	// The ledger reflects exactly the winning claim's charge.
	remaining := remainingHospitalization(t, store)
	assert.True(t, remaining.Equal(money(1000)) || remaining.Equal(money(2000)),
		"remaining is 5000 minus the single committed amount, got %s", remaining)
}
