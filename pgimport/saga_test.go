package pgimport

import (
	"errors"
	"reflect"
	"testing"
)

func TestSagaRollbackReverseOrder(t *testing.T) {
	var order []string
	saga := &Saga{}
	saga.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	saga.Add("second", func() error {
		order = append(order, "second")
		return nil
	})
	saga.Add("third", func() error {
		order = append(order, "third")
		return nil
	})

	if errs := saga.Rollback(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"third", "second", "first"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("rollback order = %v, want %v", order, want)
	}
}

func TestSagaRollbackContinuesPastFailure(t *testing.T) {
	var order []string
	saga := &Saga{}
	saga.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	saga.Add("second", func() error {
		return errors.New("drop failed")
	})
	saga.Add("third", func() error {
		order = append(order, "third")
		return nil
	})

	errs := saga.Rollback()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	want := []string{"third", "first"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("failure stopped the remaining compensations: %v", order)
	}
}

func TestSagaResetDropsSteps(t *testing.T) {
	ran := false
	saga := &Saga{}
	saga.Add("step", func() error {
		ran = true
		return nil
	})
	saga.Reset()

	if errs := saga.Rollback(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if ran {
		t.Error("undo ran after Reset")
	}
}

func TestSagaRollbackIsOneShot(t *testing.T) {
	count := 0
	saga := &Saga{}
	saga.Add("step", func() error {
		count++
		return nil
	})

	saga.Rollback()
	saga.Rollback()
	if count != 1 {
		t.Errorf("undo ran %d times, want 1", count)
	}
}
