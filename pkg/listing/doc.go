// Package listing turns VaultRE listing feeds into display-ready properties.
//
// A Repository reads the sale, lease and rural feeds through a cached
// fetcher, drops listings whose status should never be shown, and wraps each
// remaining record in a Property. Property derives the strings website
// templates render: price, auction schedule and venue, next open home,
// largest thumbnail and description.
//
//	fetcher := cache.NewFetcher(store, vaultreClient, cache.FetcherOptions{})
//	repo := listing.NewRepository(fetcher, listing.RepositoryConfig{})
//	properties, err := repo.Residential(ctx, listing.Params{"pagesize": "12"})
package listing
