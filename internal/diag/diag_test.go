package diag

import (
	"testing"

	"tsmerge/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		SynError:                  "SYN1001",
		SemaUsedBeforeDeclaration: "SEM2449",
		IOWriteFailed:             "IO4002",
		PrjUnitCycle:              "PRJ5004",
		ObsTimings:                "OBS6001",
		UnknownCode:               "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("ID(%d) = %q, want %q", code, got, want)
		}
	}
	if Code(9999).Title() != UnknownCode.Title() {
		t.Fatalf("unexpected title for unregistered code")
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(SynError, span(1, 0, 1), "a")) {
		t.Fatalf("first add rejected")
	}
	b.Add(NewError(SynError, span(1, 1, 2), "b"))
	if b.Add(NewError(SynError, span(1, 2, 3), "c")) {
		t.Fatalf("add past limit accepted")
	}

	other := NewBag(4)
	other.Add(New(SevWarning, PrjUnitCycle, span(2, 0, 1), "cycle"))
	b.Merge(other)
	if b.Len() != 3 {
		t.Fatalf("merged len = %d, want 3", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SynError, span(2, 0, 1), "late file"))
	b.Add(New(SevWarning, SynMissing, span(1, 5, 6), "warn"))
	b.Add(NewError(SynError, span(1, 5, 6), "err"))
	b.Add(NewError(SynError, span(1, 5, 6), "err again"))
	b.Sort()
	items := b.Items()
	if items[0].Severity != SevError || items[0].Primary.File != 1 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[len(items)-1].Primary.File != 2 {
		t.Fatalf("file 2 must sort last")
	}
	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("dedup len = %d, want 3", b.Len())
	}
}

func TestBagWithout(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SemaUsedBeforeDeclaration, span(1, 0, 1), "x"))
	b.Add(NewError(SynError, span(1, 2, 3), "y"))
	filtered := b.Without(SemaUsedBeforeDeclaration)
	if filtered.Len() != 1 || filtered.Items()[0].Code != SynError {
		t.Fatalf("unexpected filtered bag: %+v", filtered.Items())
	}
	if b.Len() != 2 {
		t.Fatalf("receiver modified")
	}
	if b.Count(SemaUsedBeforeDeclaration) != 1 {
		t.Fatalf("count mismatch")
	}
}

func TestFilterAndDedupReporters(t *testing.T) {
	bag := NewBag(10)
	r := NewFilterReporter(NewDedupReporter(BagReporter{Bag: bag}), SemaUsedBeforeDeclaration)

	ReportError(r, SemaUsedBeforeDeclaration, span(1, 0, 1), "used early").Emit()
	ReportError(r, IOWriteFailed, span(0, 0, 0), "disk full").Emit()
	ReportError(r, IOWriteFailed, span(0, 0, 0), "disk full").Emit()
	b := ReportWarning(r, PrjUnitCycle, span(1, 0, 1), "cycle").WithNote(span(2, 0, 1), "here")
	b.Emit()
	b.Emit()

	if bag.Len() != 2 {
		t.Fatalf("bag len = %d, want 2", bag.Len())
	}
	if got := bag.Items()[1].Notes; len(got) != 1 || got[0].Msg != "here" {
		t.Fatalf("notes not forwarded: %+v", got)
	}
	if !r.Drops(SemaUsedBeforeDeclaration) || r.Drops(SynError) {
		t.Fatalf("Drops mismatch")
	}
}
