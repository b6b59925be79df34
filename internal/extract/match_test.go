package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestValidTrace(t *testing.T) {
	assert.True(t, ValidTrace("000111"))
	assert.True(t, ValidTrace("7"))
	assert.False(t, ValidTrace(""))
	assert.False(t, ValidTrace("12a4"))
	assert.False(t, ValidTrace(" 123"))
}

func TestTraces(t *testing.T) {
	text := " TRACE     : 000111\n RESP CODE : 00\n TRACE     : 1234567\n TRACE: 999"
	if diff := cmp.Diff([]string{"000111", "1234567"}, Traces(text)); diff != "" {
		t.Errorf("Traces mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, Traces("no trace here"))
	assert.Nil(t, Traces(""))
}

func TestMatcherWholeToken(t *testing.T) {
	m := Matcher{Trace: "123"}
	assert.False(t, m.IsTarget(" TRACE     : 1234"), "prefix of a longer trace must not match")
	assert.False(t, m.IsTarget(" TRACE     : 0123"), "suffix of a longer trace must not match")
	assert.True(t, m.IsTarget(" TRACE     : 123"))
	assert.True(t, m.IsTarget("header\n TRACE     : 123\r\nfooter"))
	assert.False(t, Matcher{}.IsTarget(" TRACE     : 123"), "empty trace never matches")
}

func TestIsSuccessWithdrawal(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"cash withdrawal", withdrawal("1"), true},
		{"fast cash", fastCash("1"), true},
		{"trailing blank after code", " RESP CODE : 00 \n TRN TYPE  : CASH WITHDRAWAL", true},
		{"carriage returns", " RESP CODE : 00\r\r\n TRN TYPE  : FAST CASH", true},
		{"declined", declined("1"), false},
		{"inquiry", inquiry("1"), false},
		{"code 001", " RESP CODE : 001\n TRN TYPE  : CASH WITHDRAWAL", false},
		{"lines not adjacent", " RESP CODE : 00\n AMOUNT    : 5\n TRN TYPE  : CASH WITHDRAWAL", false},
		{"type before code", " TRN TYPE  : CASH WITHDRAWAL\n RESP CODE : 00", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSuccessWithdrawal(tc.text))
		})
	}
}

func TestClassify(t *testing.T) {
	m := Matcher{Trace: "000111"}
	s := m.Classify(Session{Index: 4, Text: withdrawal("000111"), Complete: true})
	assert.True(t, s.IsTarget)
	assert.True(t, s.IsSuccessWithdrawal)
	assert.Equal(t, []string{"000111"}, s.Traces)
	assert.Equal(t, 4, s.Index)
	assert.True(t, s.Complete)

	s = m.Classify(Session{Text: inquiry("000112")})
	assert.False(t, s.IsTarget)
	assert.False(t, s.IsSuccessWithdrawal)
}
