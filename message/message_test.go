package message

import (
	"fmt"
	"testing"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/format"
	"github.com/stretchr/testify/require"
)

// ==============================================================================
// Encode
// ==============================================================================

func TestEncode_FourByte(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		logtype  string
		vars     []int32
		dictVars string
		offsets  []int32
	}{
		{name: "empty", msg: "", logtype: ""},
		{name: "constant only", msg: "hello world", logtype: "hello world"},
		{
			name:     "mixed",
			msg:      "Connected to 10.0.0.5 after 3 retries in 0.25 sec",
			logtype:  "Connected to \x12 after \x11 retries in \x13 sec",
			vars:     []int32{3, 1617},
			dictVars: "10.0.0.5",
			offsets:  []int32{8},
		},
		{name: "negative integer", msg: "x -42 y", logtype: "x \x11 y", vars: []int32{-42}},
		{name: "int32 min", msg: "min -2147483648", logtype: "min \x11", vars: []int32{-2147483648}},
		{
			name:     "int32 overflow goes to dictionary",
			msg:      "big 2147483648",
			logtype:  "big \x12",
			dictVars: "2147483648",
			offsets:  []int32{10},
		},
		{name: "leading zeros", msg: "code 007", logtype: "code \x12", dictVars: "007", offsets: []int32{3}},
		{name: "negative zero", msg: "-0", logtype: "\x12", dictVars: "-0", offsets: []int32{2}},
		{name: "after equals", msg: "value=abc", logtype: "value=\x12", dictVars: "abc", offsets: []int32{3}},
		{name: "hex run", msg: "hash deadbeef", logtype: "hash \x12", dictVars: "deadbeef", offsets: []int32{8}},
		{name: "single hex letter", msg: "a b", logtype: "a b"},
		{
			name:     "float too wide",
			msg:      "ratio 9999.9999",
			logtype:  "ratio \x12",
			dictVars: "9999.9999",
			offsets:  []int32{9},
		},
		{name: "escaped literals", msg: "tab\x11and\\slash", logtype: "tab\\\x11and\\\\slash"},
		{
			name:     "multiple dictionary variables",
			msg:      "from 1.2.3.4 to 5.6.7.8",
			logtype:  "from \x12 to \x12",
			dictVars: "1.2.3.45.6.7.8",
			offsets:  []int32{7, 14},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			em, err := EncodeMessage[int32](tt.msg)
			require.NoError(err)
			require.Equal(tt.logtype, string(em.Logtype))
			require.Equal(len(tt.vars), len(em.Vars))
			if len(tt.vars) > 0 {
				require.Equal(tt.vars, em.Vars)
			}
			require.Equal(tt.dictVars, string(em.DictVars))
			require.Equal(len(tt.offsets), len(em.DictVarEndOffsets))
			if len(tt.offsets) > 0 {
				require.Equal(tt.offsets, em.DictVarEndOffsets)
			}
		})
	}
}

func TestEncode_EightByte(t *testing.T) {
	require := require.New(t)

	em, err := EncodeMessage[int64]("big 2147483648 ratio 9999.9999 pi 0.25")
	require.NoError(err)
	require.Equal("big \x11 ratio \x13 pi \x13", string(em.Logtype))
	require.Len(em.Vars, 3)
	require.Equal(int64(2147483648), em.Vars[0])
	require.Equal(int64(6433), em.Vars[2])
	require.Empty(em.DictVars)

	em, err = EncodeMessage[int64]("overflow 9223372036854775808 min -9223372036854775808")
	require.NoError(err)
	require.Equal("overflow \x12 min \x11", string(em.Logtype))
	require.Equal([]int64{-9223372036854775808}, em.Vars)
	require.Equal("9223372036854775808", string(em.DictVars))
}

func TestEncode_ReusesDestination(t *testing.T) {
	require := require.New(t)

	var em EncodedMessage[int32]
	require.NoError(Encode("id=abc count 12", &em))
	require.NoError(Encode("plain", &em))

	require.Equal("plain", string(em.Logtype))
	require.Empty(em.Vars)
	require.Empty(em.DictVars)
	require.Empty(em.DictVarEndOffsets)
}

// ==============================================================================
// Numbers
// ==============================================================================

func TestScheme_EncodeFloat(t *testing.T) {
	four := SchemeFor[int32]()
	eight := SchemeFor[int64]()

	t.Run("packing", func(t *testing.T) {
		require := require.New(t)

		v, ok := four.EncodeFloat("0.25")
		require.True(ok)
		require.Equal(int32(1617), v)

		v, ok = four.EncodeFloat("-1.5")
		require.True(ok)
		require.Equal(int32(-2147482680), v)

		v64, ok := eight.EncodeFloat("0.25")
		require.True(ok)
		require.Equal(int64(6433), v64)
	})

	t.Run("rejects", func(t *testing.T) {
		for _, tok := range []string{"", "-", "1.", ".5", "1.2.3", "12", "1e5", "-.5", "123456789.0", "1-2.3"} {
			_, ok := four.EncodeFloat(tok)
			require.False(t, ok, tok)
		}
	})

	t.Run("eight-byte accepts wider floats", func(t *testing.T) {
		_, ok := eight.EncodeFloat("123456789.0")
		require.True(t, ok)
		_, ok = eight.EncodeFloat("1.0000000000000001")
		require.False(t, ok, "17 digits")
	})
}

func TestScheme_AppendFloat(t *testing.T) {
	four := SchemeFor[int32]()
	eight := SchemeFor[int64]()

	for _, tok := range []string{"0.25", "-1.5", "00.10", "-0.0", "1234.5678", "3.0", "0.0000001"} {
		t.Run(tok, func(t *testing.T) {
			require := require.New(t)

			v, ok := four.EncodeFloat(tok)
			require.True(ok)
			out, err := four.AppendFloat(nil, v)
			require.NoError(err)
			require.Equal(tok, string(out))

			v64, ok := eight.EncodeFloat(tok)
			require.True(ok)
			out, err = eight.AppendFloat(nil, v64)
			require.NoError(err)
			require.Equal(tok, string(out))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := four.AppendFloat(nil, 0)
		require.ErrorIs(t, err, errs.ErrDecode, "decimal position must leave an integer digit")

		v, ok := eight.EncodeFloat("1.5")
		require.True(t, ok)
		_, err = eight.AppendFloat(nil, v|1<<62)
		require.ErrorIs(t, err, errs.ErrDecode, "unused bit set")

		// numDigits 2, decimalPos 1, digit value 100
		_, err = four.AppendFloat(nil, int32(100<<6|1<<3))
		require.ErrorIs(t, err, errs.ErrDecode, "digit value wider than numDigits")
	})
}

func TestScheme_EncodeInteger(t *testing.T) {
	four := SchemeFor[int32]()

	tests := []struct {
		tok  string
		want int32
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"-7", -7, true},
		{"2147483647", 2147483647, true},
		{"-2147483648", -2147483648, true},
		{"2147483648", 0, false},
		{"-2147483649", 0, false},
		{"-0", 0, false},
		{"01", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"12a", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, ok := four.EncodeInteger(tt.tok)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeFor(t *testing.T) {
	require := require.New(t)

	require.Same(&fourByteScheme, SchemeFor[int32]())
	require.Same(&eightByteScheme, SchemeFor[int64]())
	require.Equal(format.FourByte, SchemeFor[int32]().Width())
	require.Equal(8, SchemeFor[int64]().VarSize())
	require.True(SchemeFor[int32]().DeltaTimestamps())
	require.False(SchemeFor[int64]().DeltaTimestamps())

	require.Equal(int64(-2147483648), SchemeFor[int32]().minInt)
	require.Equal(int64(2147483647), SchemeFor[int32]().maxInt)
	require.Equal(16, SchemeFor[int64]().maxFloatDigits)
}

// ==============================================================================
// Decode
// ==============================================================================

var roundTripMessages = []string{
	"",
	"hello world",
	"Connected to 10.0.0.5 after 3 retries in 0.25 sec",
	"user=alice id=42 took 12.5ms status=OK",
	"Connection FAILED: timeout",
	"values -1 0 1 -0 007 1. .5 1.2.3",
	"ints 2147483647 2147483648 -9223372036854775808 9223372036854775808",
	"floats 9999.9999 1.0000000000000001 -0.000",
	"escapes \x11 \x12 \x13 \\ \\\\ and \\x11",
	"unicode ユーザー id=42 ok, ümlaut=ä1",
	"path /var/log/app-01.log:1234",
	"hex 0xdeadbeef cafe bad ff",
	"trailing var 3",
	"x=",
	"==a",
}

func roundTrip[T Var](t *testing.T, msg string) {
	t.Helper()
	require := require.New(t)

	em, err := EncodeMessage[T](msg)
	require.NoError(err)

	numeric, dictionary, err := CountPlaceholders(em.Logtype)
	require.NoError(err)
	require.Equal(len(em.Vars), numeric)
	require.Equal(len(em.DictVarEndOffsets), dictionary)

	prev := int32(0)
	for _, off := range em.DictVarEndOffsets {
		require.GreaterOrEqual(off, prev)
		prev = off
	}
	require.Equal(int(prev), len(em.DictVars))

	out, err := DecodeMessage(&em)
	require.NoError(err)
	require.Equal(msg, out)
}

func TestRoundTrip(t *testing.T) {
	for i, msg := range roundTripMessages {
		t.Run(fmt.Sprintf("four/%d", i), func(t *testing.T) { roundTrip[int32](t, msg) })
		t.Run(fmt.Sprintf("eight/%d", i), func(t *testing.T) { roundTrip[int64](t, msg) })
	}
}

func TestDecode_AppendsToDestination(t *testing.T) {
	require := require.New(t)

	em, err := EncodeMessage[int64]("count 5")
	require.NoError(err)

	out, err := Decode(&em, []byte("prefix: "))
	require.NoError(err)
	require.Equal("prefix: count 5", string(out))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		em   EncodedMessage[int32]
	}{
		{name: "missing numeric variable", em: EncodedMessage[int32]{Logtype: []byte("\x11")}},
		{name: "extra numeric variable", em: EncodedMessage[int32]{Logtype: []byte("x"), Vars: []int32{1}}},
		{name: "dangling escape", em: EncodedMessage[int32]{Logtype: []byte("abc\\")}},
		{name: "missing dictionary offset", em: EncodedMessage[int32]{Logtype: []byte("\x12")}},
		{
			name: "extra dictionary offset",
			em:   EncodedMessage[int32]{Logtype: []byte("x"), DictVars: []byte("ab"), DictVarEndOffsets: []int32{2}},
		},
		{
			name: "decreasing offsets",
			em: EncodedMessage[int32]{
				Logtype: []byte("\x12\x12"), DictVars: []byte("abcd"), DictVarEndOffsets: []int32{3, 1},
			},
		},
		{
			name: "offset past end",
			em:   EncodedMessage[int32]{Logtype: []byte("\x12"), DictVars: []byte("abcd"), DictVarEndOffsets: []int32{5}},
		},
		{
			name: "negative offset",
			em:   EncodedMessage[int32]{Logtype: []byte("\x12"), DictVars: []byte("abcd"), DictVarEndOffsets: []int32{-1}},
		},
		{
			name: "trailing dictionary bytes",
			em:   EncodedMessage[int32]{Logtype: []byte("\x12"), DictVars: []byte("abcd"), DictVarEndOffsets: []int32{2}},
		},
		{name: "invalid float", em: EncodedMessage[int32]{Logtype: []byte("\x13"), Vars: []int32{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage(&tt.em)
			require.ErrorIs(t, err, errs.ErrDecode)
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	require := require.New(t)

	numeric, dictionary, err := CountPlaceholders([]byte("a \x11 \\\x12 \x12 \x13 \\\\"))
	require.NoError(err)
	require.Equal(2, numeric)
	require.Equal(1, dictionary)

	_, _, err = CountPlaceholders([]byte("\\"))
	require.ErrorIs(err, errs.ErrDecode)
}

func TestLogtypeID(t *testing.T) {
	require := require.New(t)

	a, err := EncodeMessage[int32]("user 1 logged in")
	require.NoError(err)
	b, err := EncodeMessage[int32]("user 22 logged in")
	require.NoError(err)
	c, err := EncodeMessage[int32]("user bob logged out")
	require.NoError(err)

	require.Equal(a.LogtypeID(), b.LogtypeID())
	require.NotEqual(a.LogtypeID(), c.LogtypeID())
}

func TestEncodedMessage_Clone(t *testing.T) {
	require := require.New(t)

	em, err := EncodeMessage[int32]("id=abc n=5")
	require.NoError(err)

	clone := em.Clone()
	em.Logtype[0] = 'X'
	em.DictVars[0] = 'X'

	out, err := DecodeMessage(&clone)
	require.NoError(err)
	require.Equal("id=abc n=5", out)
}

// ==============================================================================
// Benchmarks
// ==============================================================================

func BenchmarkEncode(b *testing.B) {
	msg := "Connected to 10.0.0.5 after 3 retries in 0.25 sec user=alice"
	var em EncodedMessage[int64]

	b.ReportAllocs()
	for b.Loop() {
		_ = Encode(msg, &em)
	}
}

func BenchmarkDecode(b *testing.B) {
	em, _ := EncodeMessage[int64]("Connected to 10.0.0.5 after 3 retries in 0.25 sec user=alice")
	buf := make([]byte, 0, 128)

	b.ReportAllocs()
	for b.Loop() {
		buf, _ = Decode(&em, buf[:0])
	}
}
