package response

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		page  int
		limit int
		want  int
	}{
		{"exact multiple", 20, 1, 10, 2},
		{"partial last page", 21, 3, 10, 3},
		{"empty", 0, 1, 10, 0},
		{"zero limit", 5, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.total, tt.page, tt.limit)
			if got.Pages != tt.want {
				t.Fatalf("pages = %d, want %d", got.Pages, tt.want)
			}
			if got.Page != tt.page || got.Limit != tt.limit || got.Total != tt.total {
				t.Fatalf("unexpected pagination %+v", got)
			}
		})
	}
}
