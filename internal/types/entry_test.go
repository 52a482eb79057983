package types

import "testing"

func TestGroupEntryDegradesToSingleEvent(t *testing.T) {
	t.Parallel()

	e := GroupEntry(InteractionEvent{ID: "a", TriggeredAt: 10})
	if e.Kind() != KindEvent {
		t.Fatalf("Kind() = %v, want event", e.Kind())
	}
	if e.ID() != "a" {
		t.Fatalf("ID() = %q, want a", e.ID())
	}

	if k := GroupEntry().Kind(); k != KindInvalid {
		t.Fatalf("empty GroupEntry kind = %v, want invalid", k)
	}
}

func TestSetTimingStampsEveryGroupMember(t *testing.T) {
	t.Parallel()

	e := GroupEntry(
		InteractionEvent{ID: "a", TriggeredAt: 10},
		InteractionEvent{ID: "b", TriggeredAt: 10},
	)
	e.SetTiming(4, 2)

	for i, m := range e.Group {
		if m.DeltaTime != 4 || m.EventRecordIndex != 2 {
			t.Errorf("member %d timing = (%v, %d), want (4, 2)", i, m.DeltaTime, m.EventRecordIndex)
		}
	}
	if e.Index() != 2 || e.DeltaTime() != 4 {
		t.Errorf("entry timing = (%v, %d), want (4, 2)", e.DeltaTime(), e.Index())
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := BlockEntry(EventBlock{
		ID:      "blk",
		Element: &InteractionEvent{Selector: "#a", SelectedSelector: &Selector{Value: "#a"}},
	})
	cp := orig.Clone()
	cp.Block.Element.SelectedSelector.Value = "#changed"
	cp.Block.Element.Selector = "#changed"

	if orig.Block.Element.SelectedSelector.Value != "#a" {
		t.Error("clone shares SelectedSelector with original")
	}
	if orig.Block.Element.Selector != "#a" {
		t.Error("clone shares Element with original")
	}
}

func TestAssertionNegate(t *testing.T) {
	t.Parallel()

	cases := map[AssertionType]AssertionType{
		AssertToHaveTitle:  AssertNotToHaveTitle,
		AssertContains:     AssertNotContains,
		AssertHasAttribute: AssertNotHasAttribute,
		AssertInDocument:   AssertNotInDocument,
		AssertToHaveLength: AssertNotToHaveLength,
	}
	for in, want := range cases {
		if got := in.Negate(); got != want {
			t.Errorf("%s.Negate() = %s, want %s", in, got, want)
		}
	}
}

func TestParseFramework(t *testing.T) {
	t.Parallel()

	f, err := ParseFramework(" Playwright ")
	if err != nil || f != FrameworkPlaywright {
		t.Fatalf("ParseFramework = (%q, %v), want playwright", f, err)
	}
	if _, err := ParseFramework("selenium"); err == nil {
		t.Fatal("expected error for unknown framework")
	}
}
