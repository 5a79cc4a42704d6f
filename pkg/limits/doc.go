// Package limits enforces plan quotas: given a tenant and an intended
// action, it compares live usage against the active plan's limits document
// and returns an allow/deny decision.
//
// Counting is a strategy table keyed by resource. Inventory resources
// (contacts, groups, images, users) count live rows and can shrink;
// monthly messages read the additive period ledger in the usage package.
// The composition root registers one CounterFunc per resource:
//
//	svc := limits.NewService(subs, catalog, tracker, log,
//	    limits.WithCounter(plan.ResourceContacts, counters.Contacts),
//	    limits.WithCounter(plan.ResourceGroups, counters.Groups),
//	)
//	if res := svc.Check(ctx, limits.ActionCreateContact, tenantID); !res.Allowed {
//	    // deny with res.Reason, res.Limit, res.Current
//	}
//
// Checks are soft limits: callers check before writing and record usage
// after, without a wrapping transaction, accepting a bounded overshoot
// under concurrency.
package limits
