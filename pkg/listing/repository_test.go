package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/vaultre-client/internal/testutil"
	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const residentialSalePath = "/properties/residential/sale?publishedOnPortals=1&sort=inserted&sortOrder=desc"

func ids(properties []*Property) []string {
	out := make([]string, 0, len(properties))
	for _, p := range properties {
		out = append(out, p.ID())
	}
	return out
}

func TestNewRepository_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRepository(nil, RepositoryConfig{}) })
}

func TestRepository_DetailKeys(t *testing.T) {
	repo := newTestRepository(newStubFetcher())

	keys := repo.DetailKeys()
	assert.Equal(t, []string{"bed", "bath", "garages"}, keys)

	keys[0] = "mutated"
	assert.Equal(t, "bed", repo.DetailKeys()[0])
}

func TestRepository_ListPaths(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(r *Repository) ([]*Property, error)
		want string
	}{
		{
			name: "residential defaults",
			call: func(r *Repository) ([]*Property, error) { return r.Residential(ctx, nil) },
			want: residentialSalePath,
		},
		{
			name: "caller overrides defaults",
			call: func(r *Repository) ([]*Property, error) {
				return r.Residential(ctx, Params{"sort": "price", "pagesize": "12"})
			},
			want: "/properties/residential/sale?pagesize=12&publishedOnPortals=1&sort=price&sortOrder=desc",
		},
		{
			name: "lease",
			call: func(r *Repository) ([]*Property, error) { return r.ResidentialsForLease(ctx, Params{}) },
			want: "/properties/residential/lease?publishedOnPortals=1&sort=inserted&sortOrder=desc",
		},
		{
			name: "rural",
			call: func(r *Repository) ([]*Property, error) { return r.Rural(ctx, nil) },
			want: "/properties/rural/sale?publishedOnPortals=1&sort=inserted&sortOrder=desc",
		},
		{
			name: "rural sold has no defaults",
			call: func(r *Repository) ([]*Property, error) { return r.RuralSold(ctx, nil) },
			want: "/properties/rural/sale/sold?",
		},
		{
			name: "rural sold with params",
			call: func(r *Repository) ([]*Property, error) { return r.RuralSold(ctx, Params{"pagesize": "6"}) },
			want: "/properties/rural/sale/sold?pagesize=6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newStubFetcher()
			_, err := tt.call(newTestRepository(fetcher))
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, fetcher.Calls())
		})
	}
}

func TestRepository_SingleListingPaths(t *testing.T) {
	ctx := context.Background()
	fetcher := newStubFetcher()
	repo := newTestRepository(fetcher)

	_, err := repo.ResidentialProperty(ctx, "42")
	require.NoError(t, err)
	_, err = repo.ResidentialForLease(ctx, "43")
	require.NoError(t, err)
	_, err = repo.RuralProperty(ctx, "44")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/properties/residential/sale/42",
		"/properties/residential/lease/43",
		"/properties/rural/sale/44",
	}, fetcher.Calls())
}

func TestRepository_StatusFiltering(t *testing.T) {
	const body = `{"items":[
		{"id":1,"status":"listing"},
		{"id":2,"status":"unconditional"},
		{"id":3,"status":"appraisal"},
		{"id":4,"status":"prospect"},
		{"id":5,"status":"conditional"},
		{"id":6,"status":"sold"}
	]}`

	t.Run("residential excludes unconditional", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies[residentialSalePath] = body

		got, err := newTestRepository(fetcher).Residential(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "5", "6"}, ids(got))
	})

	t.Run("rural excludes unconditional", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies["/properties/rural/sale?publishedOnPortals=1&sort=inserted&sortOrder=desc"] = body

		got, err := newTestRepository(fetcher).Rural(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "5", "6"}, ids(got))
	})

	t.Run("rural sold keeps unconditional", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies["/properties/rural/sale/sold?"] = body

		got, err := newTestRepository(fetcher).RuralSold(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "5", "6"}, ids(got))
	})
}

func TestRepository_LeaseRequiresAvailable(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.bodies["/properties/residential/lease?publishedOnPortals=1&sort=inserted&sortOrder=desc"] = `{"items":[
		{"id":1,"status":"listing","available":true},
		{"id":2,"status":"listing","available":false},
		{"id":3,"status":"listing"},
		{"id":4,"status":"appraisal","available":true},
		{"id":5,"status":"unconditional","available":true},
		{"id":6,"status":"management","available":false}
	]}`

	got, err := newTestRepository(fetcher).ResidentialsForLease(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, ids(got))
}

func TestRepository_MalformedResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("list body is not JSON", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies[residentialSalePath] = `<html>maintenance</html>`

		got, err := newTestRepository(fetcher).Residential(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("items that are not objects are skipped", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies[residentialSalePath] = `{"items":[null,"x",{"id":7,"status":"listing"},[1]]}`

		got, err := newTestRepository(fetcher).Residential(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, ids(got))
	})

	t.Run("single listing body is not JSON", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.bodies["/properties/rural/sale/9"] = `oops`

		p, err := newTestRepository(fetcher).RuralProperty(ctx, "9")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "", p.ID())
		assert.Equal(t, "Contact us for an updated price", p.Price())
		assert.Equal(t, "Contact us for the next open home", p.OpenHouseSchedule(ctx))
	})
}

func TestRepository_UpstreamErrorIsReturned(t *testing.T) {
	upstream := errors.New("connection refused")
	fetcher := newStubFetcher()
	fetcher.errs[residentialSalePath] = upstream
	fetcher.errs["/properties/residential/sale/1"] = upstream
	repo := newTestRepository(fetcher)

	list, err := repo.Residential(context.Background(), nil)
	assert.ErrorIs(t, err, upstream)
	assert.Nil(t, list)

	p, err := repo.ResidentialProperty(context.Background(), "1")
	assert.ErrorIs(t, err, upstream)
	assert.Nil(t, p)
}

func TestRepository_ResidentialProperty(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.bodies["/properties/residential/sale/42"] = `{"id":42,"status":"listing","searchPrice":450000,"bed":3}`

	p, err := newTestRepository(fetcher).ResidentialProperty(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID())
	assert.Equal(t, "$450,000", p.Price())
	assert.Equal(t, "3", p.Attr("bed").String())
}

// newStack wires the repository to a mock VaultRE through the real client and
// cached fetcher.
func newStack(t *testing.T) (*Repository, *testutil.MockVaultRE) {
	t.Helper()

	mock := testutil.NewMockVaultRE()
	t.Cleanup(mock.Close)

	c, err := client.New(client.Config{BaseURL: mock.URL()})
	require.NoError(t, err)

	clk := newMockClock(testNow)
	store, err := cache.NewMemoryStore(cache.DefaultMemoryConfig(), clk, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zerolog.Nop()
	fetcher := cache.NewFetcher(store, c, cache.FetcherOptions{Logger: &logger})
	repo := NewRepository(fetcher, RepositoryConfig{Clock: clk, Logger: &logger})
	return repo, mock
}

func TestRepository_IdempotentWithinTTL(t *testing.T) {
	repo, mock := newStack(t)
	mock.SetJSON("/properties/residential/sale", `{"items":[
		{"id":3,"status":"listing"},
		{"id":1,"status":"listing"},
		{"id":2,"status":"unconditional"}
	]}`)
	ctx := context.Background()

	first, err := repo.Residential(ctx, Params{"pagesize": "10"})
	require.NoError(t, err)
	second, err := repo.Residential(ctx, Params{"pagesize": "10"})
	require.NoError(t, err)

	assert.Equal(t, []string{"3", "1"}, ids(first))
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, mock.RequestCount())
}

func TestRepository_BypassRefetches(t *testing.T) {
	repo, mock := newStack(t)
	mock.SetJSON("/properties/residential/sale", `{"items":[{"id":1,"status":"listing"}]}`)

	_, err := repo.Residential(context.Background(), nil)
	require.NoError(t, err)

	mock.SetJSON("/properties/residential/sale", `{"items":[{"id":2,"status":"listing"}]}`)
	got, err := repo.Residential(cache.WithBypass(context.Background(), true), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got))

	got, err = repo.Residential(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got))
	assert.Equal(t, 2, mock.RequestCount())
}

func TestRepository_AuthErrorSurfaces(t *testing.T) {
	repo, mock := newStack(t)
	mock.SetCredentials("", "expected-token")

	_, err := repo.Rural(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUpstreamAuth)
	assert.True(t, client.IsAuthError(err))
}

func TestRepository_OpenHomesAreCached(t *testing.T) {
	repo, mock := newStack(t)
	mock.SetJSON("/properties/residential/sale/5", `{"id":5,"saleLifeId":8}`)
	mock.SetJSON("/properties/5/sale/8/openHomes", `[{"start":"2019-05-25T00:00:00Z","end":"2019-05-25T00:30:00Z"}]`)
	ctx := context.Background()

	p, err := repo.ResidentialProperty(ctx, "5")
	require.NoError(t, err)

	assert.Equal(t, "25/05/2019 11:00 AM - 11:30 AM", p.OpenHouseSchedule(ctx))
	assert.Equal(t, "25/05/2019 11:00 AM - 11:30 AM", p.OpenHouseSchedule(ctx))
	assert.Equal(t, 1, mock.PathCount("/properties/5/sale/8/openHomes"))
}
