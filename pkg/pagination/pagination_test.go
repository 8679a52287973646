package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, DefaultLimit},
		{"negative uses default", -5, DefaultLimit},
		{"within range passes through", 30, 30},
		{"above max is capped", 500, MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 10}).Offset(); got != 0 {
		t.Fatalf("page 1 offset = %d, want 0", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("page 3 offset = %d, want 20", got)
	}
	if got := (Params{Page: 0, Limit: 10}).Offset(); got != 0 {
		t.Fatalf("page 0 offset = %d, want 0", got)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage(Params{Page: 2, Limit: 10}, 25)
	if page.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", page.TotalPages)
	}
	if page.TotalItems != 25 || page.Page != 2 || page.Limit != 10 {
		t.Fatalf("unexpected meta: %+v", page)
	}

	empty := NewPage(Params{}, 0)
	if empty.TotalPages != 1 || empty.Page != 1 || empty.Limit != DefaultLimit {
		t.Fatalf("empty meta: %+v", empty)
	}
}
