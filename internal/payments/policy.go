package payments

// ApprovalPolicy decides whether the payment holding the given 1-indexed
// sequence number settles. The sequence counts every payment ever recorded,
// so the decision is reproducible across restarts.
type ApprovalPolicy func(seq int64) bool

// DefaultApprovalPolicy approves everything except every third payment
// starting from the second: sequences 1..5 settle as approve, deny, approve,
// approve, deny.
func DefaultApprovalPolicy(seq int64) bool {
	return seq%3 != 2
}
