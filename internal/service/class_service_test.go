package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestAddOrActivateOnEmptyRegistry(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	ok, err := env.classes.AddOrActivate(ctx, "CS-101")
	if err != nil || !ok {
		t.Fatalf("AddOrActivate = %v, %v", ok, err)
	}
	names, err := env.classes.ListActiveNames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"CS-101"}) {
		t.Fatalf("active names = %v", names)
	}

	ok, err = env.classes.AddOrActivate(ctx, "  CS-101 ")
	if err != nil || !ok {
		t.Fatalf("second AddOrActivate = %v, %v", ok, err)
	}
	names, _ = env.classes.ListActiveNames(ctx)
	if !reflect.DeepEqual(names, []string{"CS-101"}) {
		t.Fatalf("active names after re-add = %v", names)
	}

	all, _ := env.classes.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected a single entry, got %+v", all)
	}
}

func TestAddOrActivateRejectsBlank(t *testing.T) {
	env := newTestEnv(t, true)

	ok, err := env.classes.AddOrActivate(context.Background(), "   ")
	if ok || !errors.Is(err, ErrEmptyClassName) {
		t.Fatalf("AddOrActivate(blank) = %v, %v", ok, err)
	}
	all, _ := env.classes.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("blank name must not be stored: %+v", all)
	}
}

// Re-adding an inactive class keeps it inactive; only SetActive reactivates.
func TestAddOrActivateDoesNotReactivate(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	env.classes.AddOrActivate(ctx, "CS-101")
	all, _ := env.classes.ListAll(ctx)
	if err := env.classes.SetActive(ctx, all[0].ID, false); err != nil {
		t.Fatal(err)
	}

	ok, err := env.classes.AddOrActivate(ctx, "CS-101")
	if err != nil || !ok {
		t.Fatalf("AddOrActivate = %v, %v", ok, err)
	}
	names, _ := env.classes.ListActiveNames(ctx)
	if len(names) != 0 {
		t.Fatalf("class was reactivated: %v", names)
	}

	if err := env.classes.SetActive(ctx, all[0].ID, true); err != nil {
		t.Fatal(err)
	}
	names, _ = env.classes.ListActiveNames(ctx)
	if !reflect.DeepEqual(names, []string{"CS-101"}) {
		t.Fatalf("active names = %v", names)
	}
}

func TestSetActiveUnknownID(t *testing.T) {
	env := newTestEnv(t, true)
	if err := env.classes.SetActive(context.Background(), 42, true); err != nil {
		t.Fatalf("SetActive(unknown) = %v", err)
	}
}
