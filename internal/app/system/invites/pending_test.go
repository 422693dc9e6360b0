package invites

import (
	"reflect"
	"testing"
)

func TestPendingAddresses(t *testing.T) {
	tests := []struct {
		name    string
		invited []string
		sent    []string
		want    []string
	}{
		{
			name:    "all pending",
			invited: []string{"a@x.com", "b@x.com", "c@x.com"},
			sent:    nil,
			want:    []string{"a@x.com", "b@x.com", "c@x.com"},
		},
		{
			name:    "some sent",
			invited: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
			sent:    []string{"a@x.com", "b@x.com", "c@x.com"},
			want:    []string{"d@x.com"},
		},
		{
			name:    "all sent",
			invited: []string{"a@x.com", "b@x.com"},
			sent:    []string{"a@x.com", "b@x.com"},
			want:    nil,
		},
		{
			name:    "case and whitespace normalized",
			invited: []string{" A@X.com ", "b@x.com"},
			sent:    []string{"a@x.com"},
			want:    []string{"b@x.com"},
		},
		{
			name:    "duplicates collapsed",
			invited: []string{"a@x.com", "A@x.com", "a@x.com"},
			sent:    nil,
			want:    []string{"a@x.com"},
		},
		{
			name:    "empty entries dropped",
			invited: []string{"", "  ", "a@x.com"},
			sent:    nil,
			want:    []string{"a@x.com"},
		},
		{
			name:    "invite order preserved",
			invited: []string{"c@x.com", "a@x.com", "b@x.com"},
			sent:    []string{"a@x.com"},
			want:    []string{"c@x.com", "b@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pendingAddresses(tt.invited, tt.sent)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pendingAddresses(%v, %v) = %v, want %v", tt.invited, tt.sent, got, tt.want)
			}
		})
	}
}
