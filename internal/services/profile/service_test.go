package profile

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

func TestEnsureProfileIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	req := EnsureRequest{UserID: "u1", Email: "u1@x.com", PendingType: "INDIVIDUAL"}

	first, err := f.svc.EnsureProfile(ctx, req)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if !first.Active || first.Type != constants.ProfileTypeIndividual {
		t.Fatalf("first = %+v", first)
	}
	if got := CalculateCompletion(first); got != 0 {
		t.Fatalf("completion = %d, want 0", got)
	}

	second, err := f.svc.EnsureProfile(ctx, req)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second id = %s, want %s", second.ID, first.ID)
	}
	all, err := f.repos.Profiles.ListProfiles(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored profiles = %d, want 1", len(all))
	}
}

func TestEnsureProfileConcurrentCallsCreateOne(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	const n = 6
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := f.svc.EnsureProfile(ctx, EnsureRequest{UserID: "u1", Email: "u1@x.com"})
			errs[i] = err
			if p != nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("call %d returned %s, want %s", i, ids[i], ids[0])
		}
	}
	all, err := f.repos.Profiles.ListProfiles(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored profiles = %d, want 1", len(all))
	}
}

func TestEnsureProfileBusinessSeedsLegalName(t *testing.T) {
	f := newFixture(t, Config{})
	p, err := f.svc.EnsureProfile(context.Background(), EnsureRequest{UserID: "u1", Email: "acme@x.com", PendingType: "business"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	b := p.Business()
	if b == nil || b.LegalName != "acme" {
		t.Fatalf("details = %+v", p.Details)
	}
	if DisplayName(p) != "acme" {
		t.Fatalf("display name = %q", DisplayName(p))
	}
}

func TestEnsureProfileRejects(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.EnsureProfile(context.Background(), EnsureRequest{})
	wantKind(t, err, common.ErrUnauthorized)
	_, err = f.svc.EnsureProfile(context.Background(), EnsureRequest{UserID: "u1", PendingType: "ALIEN"})
	wantKind(t, err, common.ErrValidation)
}

func TestCreateProfileActivatesOnlyFirst(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sess := sessionFor("u2")

	ind, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "INDIVIDUAL", Individual: &entity.IndividualDetails{FirstName: "Ada"}})
	if err != nil {
		t.Fatalf("create individual: %v", err)
	}
	biz, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme Ltd"}})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	if !ind.Active || biz.Active {
		t.Fatalf("active flags = %v/%v, want true/false", ind.Active, biz.Active)
	}

	_, err = f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Other"}})
	wantKind(t, err, common.ErrConflict)
	_, err = f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS"})
	wantKind(t, err, common.ErrValidation)
	_, err = f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "INDIVIDUAL", Business: &entity.BusinessDetails{LegalName: "x"}})
	wantKind(t, err, common.ErrValidation)
}

func TestConcurrentCreateOfBothTypesForFreshUser(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		sess := sessionFor(fmt.Sprintf("fresh-%d", i))
		reqs := []CreateRequest{
			{Type: "INDIVIDUAL"},
			{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme"}},
		}
		errs := make([]error, len(reqs))
		var wg sync.WaitGroup
		for j, req := range reqs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[j] = f.svc.CreateProfile(ctx, sess, req)
			}()
		}
		wg.Wait()
		for j, err := range errs {
			if err != nil {
				t.Fatalf("%s create %s: %v", sess.UserID, reqs[j].Type, err)
			}
		}

		all, err := f.svc.ListProfiles(ctx, sess)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		active := 0
		for _, p := range all {
			if p.Active {
				active++
			}
		}
		if len(all) != 2 || active != 1 {
			t.Fatalf("%s profiles = %d active = %d, want 2 and 1", sess.UserID, len(all), active)
		}
	}
}

func TestSwitchActiveProfileScenario(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sess := sessionFor("u2")

	ind, err := f.svc.EnsureProfile(ctx, EnsureRequest{UserID: "u2", Email: "u2@x.com"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	biz, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme"}})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}

	got, err := f.svc.SwitchActiveProfile(ctx, sess, biz.ID)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !got.Active {
		t.Fatal("business not active after switch")
	}
	old, err := f.repos.Profiles.GetByID(ctx, ind.ID)
	if err != nil {
		t.Fatalf("get individual: %v", err)
	}
	if old.Active {
		t.Fatal("individual still active after switch")
	}

	_, err = f.svc.SwitchActiveProfile(ctx, sessionFor("intruder"), biz.ID)
	wantKind(t, err, common.ErrForbidden)
}

func TestUpdateProfileOwnershipAndValidation(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sess := sessionFor("u1")
	p, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.UpdateProfile(ctx, sess, p.ID, entity.ProfilePatch{LegalName: strPtr("")})
	wantKind(t, err, common.ErrValidation)
	_, err = f.svc.UpdateProfile(ctx, sessionFor("u9"), p.ID, entity.ProfilePatch{Address: strPtr("1 Main St")})
	wantKind(t, err, common.ErrForbidden)
	_, err = f.svc.UpdateProfile(ctx, sess, p.ID, entity.ProfilePatch{})
	wantKind(t, err, common.ErrValidation)
	_, err = f.svc.UpdateProfile(ctx, sess, uuid.New(), entity.ProfilePatch{Address: strPtr("x")})
	wantKind(t, err, common.ErrNotFound)

	updated, err := f.svc.UpdateProfile(ctx, sess, p.ID, entity.ProfilePatch{ContactPhone: strPtr("+44 20 7946 0958")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := CalculateCompletion(updated); got != 55 {
		t.Fatalf("completion = %d, want 55", got)
	}
	if updated.Business().LegalName != "Acme" {
		t.Fatalf("legal name = %q", updated.Business().LegalName)
	}
}

func TestDeleteProfilePolicy(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sess := sessionFor("u1")

	active, err := f.svc.EnsureProfile(ctx, EnsureRequest{UserID: "u1", Email: "u1@x.com"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	biz, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = f.svc.DeleteProfile(ctx, sess, active.ID)
	wantKind(t, err, common.ErrConflict)

	if _, err := f.repos.Listings.CreateListing(ctx, biz.ID, "Loft", constants.ListingActive); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if _, err := f.svc.Review(ctx, reviewerID, biz.ID, "VERIFIED", ""); err != nil {
		t.Fatalf("review: %v", err)
	}
	err = f.svc.DeleteProfile(ctx, sess, biz.ID)
	wantKind(t, err, common.ErrConflict)

	err = f.svc.DeleteProfile(ctx, sessionFor("u9"), biz.ID)
	wantKind(t, err, common.ErrForbidden)
}

func TestDeleteProfileWithoutHistory(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sess := sessionFor("u1")

	if _, err := f.svc.EnsureProfile(ctx, EnsureRequest{UserID: "u1"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	biz, err := f.svc.CreateProfile(ctx, sess, CreateRequest{Type: "BUSINESS", Business: &entity.BusinessDetails{LegalName: "Acme"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.repos.Listings.CreateListing(ctx, biz.ID, "Loft", constants.ListingActive); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if err := f.svc.DeleteProfile(ctx, sess, biz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.repos.Profiles.GetByID(ctx, biz.ID)
	wantKind(t, err, common.ErrNotFound)
}

func TestEnsureProfileActivatesOldestWhenNoneActive(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	if _, err := f.repos.Users.UpsertUser(ctx, &entity.User{ID: "u1"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p, err := f.repos.Profiles.CreateProfile(ctx, "u1", constants.ProfileTypeIndividual, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := f.svc.EnsureProfile(ctx, EnsureRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got.ID != p.ID || !got.Active {
		t.Fatalf("got %s active=%v, want %s active", got.ID, got.Active, p.ID)
	}
}
