/*
policy.go - Authorization policy for request transitions

PURPOSE:
  Pure predicates deciding who may act on an absence request and when.
  They perform no I/O; callers supply the actor, the request, and (for
  cancellation) the current instant explicitly, which keeps the rules
  deterministic and trivially testable.

RULES:
  Approve/Deny: managers and superusers only, and only while the request
  is unapproved and its reason is not sickness. Sickness requests are
  auto-accepted on submission, so there is never anything to approve.

  Cancel: managers and superusers always may. The owner may cancel their
  own request only when the reason is not sickness and the absence has
  not yet started.

SEE ALSO:
  - lifecycle.go: applies these gates before every actioned transition
*/
package absence

import "time"

// CanApprove reports whether actor may approve or deny the request.
// The same gate governs both transitions.
func CanApprove(actor *Employee, req *Request) bool {
	if actor == nil || req == nil {
		return false
	}
	if !actor.Role.CanModerate() {
		return false
	}
	if req.Approved {
		return false
	}
	return req.Reason != ReasonSickness
}

// CanCancel reports whether actor may cancel the request as of now.
// Owners lose the right to cancel the instant the absence starts.
func CanCancel(actor *Employee, req *Request, now time.Time) bool {
	if actor == nil || req == nil {
		return false
	}
	if actor.Role.CanModerate() {
		return true
	}
	if !req.OwnedBy(actor.ID) {
		return false
	}
	if req.Reason == ReasonSickness {
		return false
	}
	return req.Start.Time().After(now)
}
