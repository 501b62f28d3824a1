package state

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
)

func TestApplyCommitsAndNotifies(t *testing.T) {
	st := New(domain.NewDocument())
	var got []Change
	unsubscribe := st.Subscribe(func(c Change) { got = append(got, c) })
	defer unsubscribe()

	err := st.Apply(context.Background(), func(doc domain.Document) (reducer.Action, error) {
		return reducer.AddCategory{Name: "Sacs"}, nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	doc, version := st.Snapshot()
	if version != 1 || !doc.HasCategory("Sacs") {
		t.Fatalf("expected committed category at version 1, got v%d %v", version, doc.Categories)
	}
	if len(got) != 1 || got[0].Kind != "ADD_CATEGORY" || got[0].Version != 1 {
		t.Fatalf("unexpected notifications %+v", got)
	}
}

func TestApplyPlannerErrorLeavesStateUntouched(t *testing.T) {
	st := New(domain.NewDocument())
	notified := false
	st.Subscribe(func(Change) { notified = true })

	wantErr := errors.New("rejected")
	err := st.Apply(context.Background(), func(domain.Document) (reducer.Action, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected planner error, got %v", err)
	}
	if st.Version() != 0 || notified {
		t.Fatalf("rejected plan must not bump version or notify")
	}
}

func TestApplyNilActionIsNoop(t *testing.T) {
	st := New(domain.NewDocument())
	if err := st.Apply(context.Background(), func(domain.Document) (reducer.Action, error) { return nil, nil }); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if st.Version() != 0 {
		t.Fatalf("expected no version bump for a no-op")
	}
}

func TestApplySerializesWriters(t *testing.T) {
	st := New(domain.NewDocument())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Apply(context.Background(), func(doc domain.Document) (reducer.Action, error) {
				return reducer.AddClient{Client: domain.Client{ID: "cli-" + strconv.Itoa(len(doc.Clients))}}, nil
			})
		}()
	}
	wg.Wait()

	doc, version := st.Snapshot()
	if version != 50 || len(doc.Clients) != 50 {
		t.Fatalf("expected 50 serialized writes, got v%d with %d clients", version, len(doc.Clients))
	}
	seen := map[string]bool{}
	for _, c := range doc.Clients {
		if seen[c.ID] {
			t.Fatalf("planner saw a stale document: duplicate id %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	doc := domain.NewDocument()
	doc.Products = []domain.Product{{ID: "prod-1", Variants: []domain.ProductVariant{{Size: "M", Quantity: 2}}}}
	st := New(doc)

	snap, _ := st.Snapshot()
	snap.Products[0].Variants[0].Quantity = 99

	again, _ := st.Snapshot()
	if again.Products[0].Variants[0].Quantity != 2 {
		t.Fatalf("snapshot shares memory with the store")
	}
}

func TestResetClearsSession(t *testing.T) {
	st := New(domain.NewDocument())
	st.SetCurrentUser(domain.User{ID: "user-admin", Role: domain.RoleAdmin})

	if err := st.Apply(context.Background(), func(domain.Document) (reducer.Action, error) {
		return reducer.ResetAllData{}, nil
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := st.CurrentUser(); ok {
		t.Fatalf("expected session to be cleared by reset")
	}
}

func TestSeedDocumentHashesAdminPIN(t *testing.T) {
	doc, err := SeedDocument(SeedOptions{AdminPIN: "482913", Demo: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(doc.Users) != 1 || doc.Users[0].Role != domain.RoleAdmin {
		t.Fatalf("expected one admin user, got %+v", doc.Users)
	}
	if doc.Users[0].PIN == "482913" {
		t.Fatalf("seed PIN must be hashed")
	}
	for _, p := range doc.Products {
		if len(p.Variants) > 0 && p.Stock != p.VariantTotal() {
			t.Fatalf("demo product %s stock %d does not match variants %d", p.ID, p.Stock, p.VariantTotal())
		}
	}
}
