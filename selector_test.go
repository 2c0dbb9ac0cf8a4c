package docmap_test

import (
	"errors"
	"testing"

	"github.com/zoobzio/docmap"
)

type selectorDoc struct {
	ID     string
	Count  int
	Nested selectorInner
}

type selectorInner struct {
	X int
}

type selectorDerived struct {
	selectorDoc
	Extra string
}

func TestMapField_Selector(t *testing.T) {
	docmap.Reset()

	tm, err := docmap.Register[selectorDoc](func(m *docmap.Map[selectorDoc]) {
		fm, err := m.MapField(func(d *selectorDoc) any { return &d.Count })
		if err != nil {
			t.Fatalf("MapField() error: %v", err)
		}
		fm.SetElementName("n").SetOrder(1)
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	fm, ok := tm.FieldForElement("n")
	if !ok || fm.FieldName() != "Count" {
		t.Errorf("FieldForElement(n) = %v, %v, want Count", fm, ok)
	}
	if fm.Order() != 1 {
		t.Errorf("Order() = %d, want 1", fm.Order())
	}
}

func TestMapID_Selector(t *testing.T) {
	docmap.Reset()

	tm, err := docmap.Register[selectorDoc](func(m *docmap.Map[selectorDoc]) {
		if _, err := m.MapID(func(d *selectorDoc) any { return &d.ID }, docmap.GeneratorUUID); err != nil {
			t.Fatalf("MapID() error: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	id, err := tm.IDField()
	if err != nil {
		t.Fatalf("IDField() error: %v", err)
	}
	if id == nil || id.FieldName() != "ID" {
		t.Fatalf("IDField() = %v, want ID", id)
	}
	if id.ElementName() != docmap.IDElementName {
		t.Errorf("MapID should force element name %q, got %q", docmap.IDElementName, id.ElementName())
	}
	if id.Generator() == nil {
		t.Error("MapID with a generator ref should attach one")
	}
}

func TestRemoveField_Selector(t *testing.T) {
	docmap.Reset()

	tm, err := docmap.Register[selectorDoc](func(m *docmap.Map[selectorDoc]) {
		if err := m.RemoveField(func(d *selectorDoc) any { return &d.Nested }); err != nil {
			t.Fatalf("RemoveField() error: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	for _, fm := range tm.Fields() {
		if fm.FieldName() == "Nested" {
			t.Error("removed field still mapped")
		}
	}
}

func TestSelector_Rejections(t *testing.T) {
	docmap.Reset()

	tests := []struct {
		name string
		sel  docmap.Selector[selectorDoc]
	}{
		{"nil result", func(*selectorDoc) any { return nil }},
		{"value result", func(d *selectorDoc) any { return d.Count }},
		{"outside address", func(*selectorDoc) any { x := 0; return &x }},
		{"nested member", func(d *selectorDoc) any { return &d.Nested.X }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docmap.Reset()
			_, err := docmap.Register[selectorDoc](func(m *docmap.Map[selectorDoc]) {
				if _, err := m.MapField(tt.sel); !errors.Is(err, docmap.ErrInvalidSelector) {
					t.Errorf("MapField() error = %v, want ErrInvalidSelector", err)
				}
			})
			if err != nil {
				t.Fatalf("Register() error: %v", err)
			}
		})
	}
}

func TestSelector_RejectsPromoted(t *testing.T) {
	docmap.Reset()

	_, err := docmap.Register[selectorDerived](func(m *docmap.Map[selectorDerived]) {
		// The promoted ID lives in the embedded base, not on the type.
		if _, err := m.MapField(func(d *selectorDerived) any { return &d.ID }); !errors.Is(err, docmap.ErrInvalidSelector) {
			t.Errorf("MapField() error = %v, want ErrInvalidSelector", err)
		}
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
}

func TestRegisterIn_IsolatedRegistry(t *testing.T) {
	r := docmap.NewRegistry()

	tm, err := docmap.RegisterIn[selectorDoc](r, func(m *docmap.Map[selectorDoc]) {
		m.SetDiscriminator("sel")
	})
	if err != nil {
		t.Fatalf("RegisterIn() error: %v", err)
	}
	if tm.Discriminator() != "sel" {
		t.Errorf("Discriminator() = %q, want sel", tm.Discriminator())
	}

	if _, err := docmap.RegisterIn[selectorDoc](r); !errors.Is(err, docmap.ErrDuplicateRegistration) {
		t.Errorf("second RegisterIn() error = %v, want ErrDuplicateRegistration", err)
	}
}
