package runtime

import "testing"

type fakeHandler struct {
	jobType string
}

func (f *fakeHandler) Type() string           { return f.jobType }
func (f *fakeHandler) Run(ctx *Context) error { return nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandler{jobType: "scan_page"}
	if err := r.Register(h); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := r.Get("scan_page")
	if !ok || got != h {
		t.Fatalf("Get returned (%v, %v), want the registered handler", got, ok)
	}
	if _, ok := r.Get("unknown"); ok {
		t.Fatal("Get for unregistered type must report missing")
	}
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Fatal("nil handler must be rejected")
	}
	if err := r.Register(&fakeHandler{jobType: ""}); err == nil {
		t.Fatal("empty job type must be rejected")
	}
	if err := r.Register(&fakeHandler{jobType: "store_pdf"}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := r.Register(&fakeHandler{jobType: "store_pdf"}); err == nil {
		t.Fatal("duplicate job type must be rejected")
	}
}
