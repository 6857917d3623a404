package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/voltbyte/bringup/memmap"
)

func testMap(t *testing.T) memmap.Map {
	t.Helper()
	m, err := memmap.New(
		memmap.Region{Name: "FLASH", Base: 0x00000000, Length: 0x10000, Attr: memmap.Read | memmap.Exec},
		memmap.Region{Name: "RAM", Base: 0x20000000, Length: 0x2000, Attr: memmap.Read | memmap.Write | memmap.Exec},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestResolve(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 176},
			{Name: ".text", Kind: KindCode, Size: 1024},
			{Name: ".rodata", Kind: KindRodata, Size: 100},
			{Name: ".data", Kind: KindData, Data: make([]byte, 64)},
			{Name: ".bss", Kind: KindBss, Size: 32},
			{Name: ".stack", Kind: KindStack, Size: 0x1000},
		},
	}

	l, err := Resolve(plan)
	if err != nil {
		t.Fatal(err)
	}

	vectors, ok := l.Find(".isr_vector")
	if !ok {
		t.Fatal("vector table was not placed")
	}
	if vectors.Addr != 0x00000000 {
		t.Errorf("vector table must sit at the flash base, got %#x", vectors.Addr)
	}

	text, _ := l.Find(".text")
	if text.Addr != 176 {
		t.Errorf("expected .text at 176, got %d", text.Addr)
	}

	s := l.Symbols
	if s.StackTop != 0x20002000 {
		t.Errorf("expected initial stack top 0x20002000, got %#x", s.StackTop)
	}
	if s.StackBottom != 0x20001000 {
		t.Errorf("expected stack bottom 0x20001000, got %#x", s.StackBottom)
	}
	if s.DataEnd-s.DataStart != 64 {
		t.Errorf("expected a 64 byte data range, got %d", s.DataEnd-s.DataStart)
	}
	if s.DataStart != 0x20000000 {
		t.Errorf("expected data at the RAM base, got %#x", s.DataStart)
	}
	if s.BssStart != s.DataEnd {
		t.Errorf("expected bss to follow data, got %#x after %#x", s.BssStart, s.DataEnd)
	}
	if s.BssEnd-s.BssStart != 32 {
		t.Errorf("expected a 32 byte bss range, got %d", s.BssEnd-s.BssStart)
	}

	// The data template must land in flash, after text.
	if s.DataLoadStart < s.TextEnd || s.DataLoadStart+64 > 0x10000 {
		t.Errorf("data template at %#x escapes flash", s.DataLoadStart)
	}

	// Every placement stays inside its region.
	for _, placement := range l.Placements {
		region, err := l.Memory.Find(placement.Region)
		if err != nil {
			t.Fatal(err)
		}
		if !region.Contains(placement.Addr, placement.Length()) {
			t.Errorf("section %s escapes region %s", placement.Section.Name, placement.Region)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 176},
			{Name: ".text", Kind: KindCode, Size: 512},
			{Name: ".data", Kind: KindData, Data: []byte{1, 2, 3, 4}},
			{Name: ".bss", Kind: KindBss, Size: 128},
			{Name: ".stack", Kind: KindStack, Size: 0x800},
		},
	}

	first, err := Resolve(plan)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 16; i++ {
		next, err := Resolve(plan)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, next); diff != "" {
			t.Fatalf("layout differs between runs (-first +next):\n%s", diff)
		}
	}
}

func TestResolveOverflow(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		region  string
	}{
		{"code overflows flash", Section{Name: ".text", Kind: KindCode, Size: 0x20000}, "FLASH"},
		{"bss overflows ram", Section{Name: ".bss", Kind: KindBss, Size: 0x4000}, "RAM"},
		{"data collides with stack", Section{Name: ".data", Kind: KindData, Size: 0x1800}, "RAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Plan{
				Memory: testMap(t),
				Sections: []Section{
					{Name: ".isr_vector", Kind: KindVectors, Size: 176},
					tt.section,
					{Name: ".stack", Kind: KindStack, Size: 0x1000},
				},
			}
			_, err := Resolve(plan)
			if !errors.Is(err, ErrLayoutOverflow) {
				t.Fatalf("expected overflow, got %v", err)
			}
			var overflow *OverflowError
			if !errors.As(err, &overflow) {
				t.Fatal("overflow error carries no detail")
			}
			if overflow.Region != tt.region {
				t.Errorf("expected overflow in %s, got %s", tt.region, overflow.Region)
			}
			if overflow.Need == 0 {
				t.Error("overflow amount must be reported")
			}
		})
	}
}

func TestResolveStackTooLarge(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 176},
			{Name: ".stack", Kind: KindStack, Size: 0x4000},
		},
	}
	_, err := Resolve(plan)
	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if overflow.Region != "RAM" {
		t.Errorf("expected overflow in RAM, got %s", overflow.Region)
	}
}

func TestResolveValidation(t *testing.T) {
	vectors := Section{Name: ".isr_vector", Kind: KindVectors, Size: 176}
	stack := Section{Name: ".stack", Kind: KindStack, Size: 0x400}

	tests := []struct {
		name     string
		sections []Section
		expected error
	}{
		{
			"no vector table",
			[]Section{{Name: ".text", Kind: KindCode, Size: 64}, stack},
			ErrNoVectorTable,
		},
		{
			"two vector tables",
			[]Section{vectors, {Name: ".isr_vector2", Kind: KindVectors, Size: 176}, stack},
			ErrMultipleVectorTables,
		},
		{
			"no stack",
			[]Section{vectors},
			ErrNoStack,
		},
		{
			"two stacks",
			[]Section{vectors, stack, {Name: ".stack2", Kind: KindStack, Size: 0x400}},
			ErrMultipleStacks,
		},
		{
			"duplicate name",
			[]Section{vectors, {Name: ".text", Kind: KindCode, Size: 4}, {Name: ".text", Kind: KindCode, Size: 4}, stack},
			ErrDuplicateSection,
		},
		{
			"alignment not a power of two",
			[]Section{vectors, {Name: ".text", Kind: KindCode, Size: 4, Align: 12}, stack},
			ErrBadAlignment,
		},
		{
			"contents and size",
			[]Section{vectors, {Name: ".data", Kind: KindData, Data: []byte{1}, Size: 8}, stack},
			ErrAmbiguousSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(Plan{Memory: testMap(t), Sections: tt.sections})
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestResolveAlignment(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 172},
			{Name: ".rodata", Kind: KindRodata, Size: 10, Align: 16},
			{Name: ".bss", Kind: KindBss, Size: 6, Align: 8},
			{Name: ".stack", Kind: KindStack, Size: 0x400},
		},
	}

	l, err := Resolve(plan)
	if err != nil {
		t.Fatal(err)
	}

	rodata, _ := l.Find(".rodata")
	if rodata.Addr%16 != 0 {
		t.Errorf(".rodata not 16 byte aligned: %#x", rodata.Addr)
	}
	if rodata.Addr != 176 {
		t.Errorf("expected .rodata at 176, got %d", rodata.Addr)
	}

	bss, _ := l.Find(".bss")
	if bss.Addr%8 != 0 {
		t.Errorf(".bss not 8 byte aligned: %#x", bss.Addr)
	}
}

func TestResolveDataTemplateOffsets(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 176},
			{Name: ".data", Kind: KindData, Data: make([]byte, 8)},
			{Name: ".data.extra", Kind: KindData, Data: make([]byte, 6), Align: 8},
			{Name: ".stack", Kind: KindStack, Size: 0x400},
		},
	}

	l, err := Resolve(plan)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := l.Find(".data")
	second, _ := l.Find(".data.extra")

	// The flash template must mirror the RAM image offsets so the reset
	// sequence can copy the whole range at once.
	if second.LoadAddr-first.LoadAddr != second.Addr-first.Addr {
		t.Errorf("template offsets diverge: load %+d, run %+d",
			second.LoadAddr-first.LoadAddr, second.Addr-first.Addr)
	}
}

func TestResolveEmptyRanges(t *testing.T) {
	plan := Plan{
		Memory: testMap(t),
		Sections: []Section{
			{Name: ".isr_vector", Kind: KindVectors, Size: 176},
			{Name: ".text", Kind: KindCode, Size: 64},
			{Name: ".stack", Kind: KindStack, Size: 0x400},
		},
	}

	l, err := Resolve(plan)
	if err != nil {
		t.Fatal(err)
	}

	s := l.Symbols
	if s.DataStart != s.DataEnd {
		t.Errorf("expected an empty data range, got %#x..%#x", s.DataStart, s.DataEnd)
	}
	if s.BssStart != s.BssEnd {
		t.Errorf("expected an empty bss range, got %#x..%#x", s.BssStart, s.BssEnd)
	}

	// Boundary symbols stay ordered even when empty.
	if s.DataStart > s.DataEnd || s.BssStart > s.BssEnd {
		t.Error("boundary symbols out of order")
	}
}
