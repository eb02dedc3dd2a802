package tags

import (
	"reflect"
	"testing"
)

func TestSet_Membership(t *testing.T) {
	s := Of(0).Union(Of(4))
	if !s.Has(0) || !s.Has(4) {
		t.Errorf("expected tags 0 and 4 in %s", s)
	}
	if s.Has(1) {
		t.Errorf("expected tag 1 absent from %s", s)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 members, got %d", s.Len())
	}
	if got := s.Indices(); !reflect.DeepEqual(got, []int{0, 4}) {
		t.Errorf("expected [0 4], got %v", got)
	}
	if s.String() != "{1,5}" {
		t.Errorf("expected {1,5}, got %s", s)
	}
}

func TestSet_Toggle(t *testing.T) {
	s := Of(2).Toggle(3).Toggle(2)
	if s != Of(3) {
		t.Errorf("expected {4}, got %s", s)
	}
	if !s.Toggle(3).Empty() {
		t.Error("expected empty set")
	}
}

func TestSet_OutOfRange(t *testing.T) {
	if Of(-1) != 0 || Of(Max) != 0 {
		t.Error("expected out-of-range tags to produce an empty set")
	}
}

func TestSet_AllAndMask(t *testing.T) {
	if All(9) != 0x1ff {
		t.Errorf("expected 0x1ff, got %#x", uint32(All(9)))
	}
	if All(Max) != ^Set(0) {
		t.Error("expected all bits for Max")
	}
	if got := ^Set(0); got.Mask(3) != 0x7 {
		t.Errorf("expected 0x7, got %#x", uint32(got.Mask(3)))
	}
	if Of(3).First() != 3 || Set(0).First() != -1 {
		t.Error("unexpected First result")
	}
}
