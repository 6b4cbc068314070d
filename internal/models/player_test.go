package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayerKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PlayerKey
	}{
		{"plain", "LeBron James", "lebron james"},
		{"accents", "Luka Dončić", "luka doncic"},
		{"apostrophe", "De'Aaron Fox", "deaaron fox"},
		{"hyphen", "Shai Gilgeous-Alexander", "shai gilgeous alexander"},
		{"suffix", "Jaren Jackson Jr.", "jaren jackson"},
		{"whitespace", "  Nikola   Jokic ", "nikola jokic"},
		{"single name keeps suffix-like token", "Jr", "jr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPlayerKey(tt.in))
		})
	}
}

func TestParseInjuryStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want InjuryStatus
	}{
		{"Out", StatusOut},
		{"doubtful", StatusDoubtful},
		{"Questionable", StatusQuestionable},
		{"Game Time Decision", StatusQuestionable},
		{"Day-To-Day", StatusQuestionable},
		{"Probable", StatusAvailable},
		{"Available", StatusAvailable},
		{"", StatusUnknown},
		{"Rest", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInjuryStatus(tt.raw))
		})
	}
}

func TestInjuryStatusesLookup(t *testing.T) {
	statuses := InjuryStatuses{NewPlayerKey("Luka Doncic"): StatusOut}

	status, ok := statuses.Lookup("Luka Dončić")
	assert.True(t, ok)
	assert.Equal(t, StatusOut, status)

	_, ok = statuses.Lookup("Kyrie Irving")
	assert.False(t, ok)
}

func TestIsSidelined(t *testing.T) {
	assert.True(t, StatusOut.IsSidelined())
	assert.True(t, StatusDoubtful.IsSidelined())
	assert.False(t, StatusQuestionable.IsSidelined())
	assert.False(t, StatusAvailable.IsSidelined())
	assert.False(t, StatusUnknown.IsSidelined())
}
