// Package flagsearch provides an embedded Go client for the flagsearch
// feature-toggle search engine, backed by Redis, Valkey or process memory.
//
// The client runs the same query engine as the HTTP service: free-text and
// structured filters, sorting by creation time, name or an environment's
// last-seen time, and keyset cursors that stay stable while records change.
//
//	client, _ := flagsearch.New(ctx, flagsearch.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _, _ = client.Features().Upsert(ctx, flagsearch.FeatureInput{Name: "new_checkout"})
//	_, _ = client.Features().Enable(ctx, "new_checkout", "production")
//
//	page, _ := client.Search().Do(ctx, flagsearch.Query{
//	    Text:     "checkout",
//	    Statuses: []string{"production:enabled"},
//	    SortBy:   flagsearch.SortByName,
//	    Limit:    20,
//	})
//
//	for f, err := range client.Search().All(ctx, flagsearch.Query{Project: "default"}) {
//	    ...
//	}
package flagsearch
