// Package plan defines the subscription plan catalog: named tiers with
// prices, billing intervals, marketing feature lists, and the per-resource
// limits document the enforcement layer interprets.
//
// Limits use an explicit "unlimited" sentinel in their serialized form and
// the Unlimited constant (-1) in Go, keeping the stored document readable
// while staying SQL-friendly.
//
// Catalogs are built from a Source (literal plans, a YAML file, or a
// database table) and validated eagerly so a broken tier definition fails
// startup:
//
//	catalog, err := plan.NewCatalog(ctx, plan.NewYAMLSource("plans.yml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	free, err := catalog.ByName(ctx, plan.FreePlanName)
package plan
