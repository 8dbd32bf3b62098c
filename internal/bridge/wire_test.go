package bridge

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/danmuck/wxsbridge/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func TestEncodeReferenceAndCall(t *testing.T) {
	testlog.Start(t)
	ref, err := EncodeReference(7, "m1", []string{"wxsA", "foo"})
	if err != nil {
		t.Fatalf("encode reference: %v", err)
	}
	if want := Tag + `[7,"m1","wxsA.foo"]`; ref != want {
		t.Fatalf("reference got=%s want=%s", ref, want)
	}

	call, err := EncodeCall(7, "m1", []string{"wxsA", "foo", "bar"}, []any{1, "x"})
	if err != nil {
		t.Fatalf("encode call: %v", err)
	}
	if want := Tag + `[7,"m1","wxsA.foo.bar",[1,"x"]]`; call != want {
		t.Fatalf("call got=%s want=%s", call, want)
	}
}

func TestEncodeCallNilArgsIsEmptyArray(t *testing.T) {
	testlog.Start(t)
	got, err := EncodeCall(1, "m", []string{"wxs", "f"}, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := Tag + `[1,"m","wxs.f",[]]`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	testlog.Start(t)
	args := []any{map[string]any{"b": 2, "a": []any{true, nil, 1.5}}}
	first, err := EncodeCall(3, "m", []string{"r", "draw"}, args)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := EncodeCall(3, "m", []string{"r", "draw"}, args)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic output: %s vs %s", again, first)
		}
	}
	if want := Tag + `[3,"m","r.draw",[{"a":[true,null,1.5],"b":2}]]`; first != want {
		t.Fatalf("got=%s want=%s", first, want)
	}
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	testlog.Start(t)
	got, err := EncodeCall(1, "m", []string{"w", "f"}, []any{"<a&b>"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasSuffix(got, `["<a&b>"]]`) {
		t.Fatalf("unexpected escaping: %s", got)
	}
}

func TestEncodeRejectsUnrepresentableArgs(t *testing.T) {
	testlog.Start(t)
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	cases := map[string][]any{
		"func":    {1, func() {}},
		"chan":    {make(chan int)},
		"nan":     {math.NaN()},
		"inf":     {"ok", math.Inf(1)},
		"cyclic":  {cyclic},
		"badutf8": {"ok\xff"},
		"badkey":  {map[string]any{"k\xfe": 1}},
		"nested":  {[]any{"fine", map[string]any{"v": "x\xff"}}},
		"field":   {struct{ Label string }{Label: "\xc3"}},
	}
	for name, args := range cases {
		got, err := EncodeCall(1, "m", []string{"w", "f"}, args)
		if !errors.Is(err, ErrSerialization) {
			t.Fatalf("%s: expected ErrSerialization, got %v", name, err)
		}
		if got != "" {
			t.Fatalf("%s: expected no wire string, got %q", name, got)
		}
	}

	_, err := EncodeCall(1, "m", []string{"w", "f"}, []any{"a", "b", func() {}})
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SerializationError, got %T", err)
	}
	if serr.Index != 2 || serr.Path != "w.f" {
		t.Fatalf("unexpected error detail: %+v", serr)
	}
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	testlog.Start(t)
	if _, err := EncodeReference(1, "m\xff", []string{"w"}); !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization for module id, got %v", err)
	}
	if _, err := EncodeReference(1, "m", []string{"w", "f\xfe"}); !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization for segment, got %v", err)
	}
	if _, err := EncodeReference(1, "m", nil); !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization for empty path, got %v", err)
	}
}

func TestDecodeWireCallRoundTrip(t *testing.T) {
	testlog.Start(t)
	args := []any{
		1,
		"x",
		true,
		nil,
		[]any{"nested", 2.5},
		map[string]any{"k": map[string]any{"deep": []any{}}},
		"\u00e9\U0001F600",
	}
	s, err := EncodeCall(42, "mod-9", []string{"chart", "series", "push"}, args)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeWireCall(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantArgs := []any{
		json.Number("1"),
		"x",
		true,
		nil,
		[]any{"nested", json.Number("2.5")},
		map[string]any{"k": map[string]any{"deep": []any{}}},
		"\u00e9\U0001F600",
	}
	want := WireCall{OwnerID: 42, ModuleID: "mod-9", Path: "chart.series.push", Args: wantArgs}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
	if !got.IsCall() {
		t.Fatalf("expected call form")
	}
}

func TestDecodeWireCallKeepsLargeIntegers(t *testing.T) {
	testlog.Start(t)
	const big int64 = 9007199254740993
	s, err := EncodeCall(1, "m", []string{"w", "f"}, []any{big})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeWireCall(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	n, ok := got.Args[0].(json.Number)
	if !ok {
		t.Fatalf("expected json.Number, got %T", got.Args[0])
	}
	v, err := n.Int64()
	if err != nil || v != big {
		t.Fatalf("large integer changed: %v %v", v, err)
	}
}

func TestEncodeNormalizesNegativeZero(t *testing.T) {
	testlog.Start(t)
	negZero := math.Copysign(0, -1)
	got, err := EncodeCall(1, "m", []string{"w", "f"}, []any{
		negZero,
		[]any{negZero, -0.5},
		map[string]any{"a": negZero, "s": "-0"},
		struct{ Z float64 }{Z: negZero},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := Tag + `[1,"m","w.f",[0,[0,-0.5],{"a":0,"s":"-0"},{"Z":0}]]`
	if got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestNormalizeNegativeZeroLeavesOtherTokens(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		`-0`:                `0`,
		`-0.25`:             `-0.25`,
		`-0e1`:              `-0e1`,
		`-10`:               `-10`,
		`["-0","a\"-0",-0]`: `["-0","a\"-0",0]`,
		`{"k":-0}`:          `{"k":0}`,
	}
	for in, want := range cases {
		if got := string(normalizeNegativeZero([]byte(in))); got != want {
			t.Fatalf("normalize(%s)=%s want %s", in, got, want)
		}
	}
}

func TestDecodeWireCallReference(t *testing.T) {
	testlog.Start(t)
	got, err := DecodeWireCall(Tag + `[7,"m1","wxsA.foo"]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.IsCall() {
		t.Fatalf("reference decoded as call: %+v", got)
	}
	if diff := cmp.Diff(WireCall{OwnerID: 7, ModuleID: "m1", Path: "wxsA.foo"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	empty, err := DecodeWireCall(Tag + `[7,"m1","wxsA.foo",[]]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !empty.IsCall() || len(empty.Args) != 0 {
		t.Fatalf("expected empty call args, got %+v", empty)
	}
}

func TestDecodeWireCallErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := DecodeWireCall(`[7,"m1","wxsA.foo"]`); !errors.Is(err, ErrNotWireCall) {
		t.Fatalf("expected ErrNotWireCall, got %v", err)
	}
	bad := []string{
		Tag + `not json`,
		Tag + `[7,"m1"]`,
		Tag + `[7,"m1","p",[],"extra"]`,
		Tag + `["7","m1","p"]`,
		Tag + `[7,1,"p"]`,
		Tag + `[7,"m1","p",null]`,
		Tag + `[7,"m1","p",{}]`,
	}
	for _, s := range bad {
		if _, err := DecodeWireCall(s); !errors.Is(err, ErrMalformedWireCall) {
			t.Fatalf("%s: expected ErrMalformedWireCall, got %v", s, err)
		}
	}
}
