package device

import (
	"context"
	"testing"
)

func TestFileProviderMintsStableID(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileProvider(dir, "laptop").Descriptor(ctx)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a minted identifier")
	}
	if first.Name != "laptop" {
		t.Fatalf("expected configured name, got %q", first.Name)
	}
	if first.Platform == "" {
		t.Fatal("expected a platform string")
	}

	// A new provider over the same directory presents the same device.
	second, err := NewFileProvider(dir, "laptop").Descriptor(ctx)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identifier not stable: %q vs %q", first.ID, second.ID)
	}
}

func TestFileProviderSeparateDirsSeparateIDs(t *testing.T) {
	ctx := context.Background()
	a, err := NewFileProvider(t.TempDir(), "").Descriptor(ctx)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	b, err := NewFileProvider(t.TempDir(), "").Descriptor(ctx)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("distinct state directories must present distinct devices")
	}
}

func TestFileProviderCachesDescriptor(t *testing.T) {
	p := NewFileProvider(t.TempDir(), "x")
	first, err := p.Descriptor(context.Background())
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	second, err := p.Descriptor(context.Background())
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if first != second {
		t.Fatalf("cached descriptor diverged: %+v vs %+v", first, second)
	}
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{}
	desc, err := p.Descriptor(context.Background())
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if desc.ID != "" {
		t.Fatalf("expected the zero descriptor, got %+v", desc)
	}
}
