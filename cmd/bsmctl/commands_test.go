package main

import "testing"

func TestRestoreTypeFor(t *testing.T) {
	tests := []struct {
		kind    string
		want    string
		wantErr bool
	}{
		{kind: "world", want: "world"},
		{kind: "config", want: "config"},
		{kind: "properties", want: "config"},
		{kind: "allowlist", want: "config"},
		{kind: "permissions", want: "config"},
		{kind: "all", wantErr: true},
		{kind: "everything", wantErr: true},
		{kind: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := restoreTypeFor(tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("restoreTypeFor(%q) error = nil, want error", tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("restoreTypeFor(%q) error = %v", tt.kind, err)
			}
			if got != tt.want {
				t.Errorf("restoreTypeFor(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}
