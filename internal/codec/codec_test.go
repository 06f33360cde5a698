package codec

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
	"github.com/raidmeter/raidmeter/pkg/types"
)

func TestMarshalUnmarshal_Skills(t *testing.T) {
	skills := map[uint32]*types.Skill{
		10101: {ID: 10101, Name: "Sound Shock", TotalDamage: 123456, DPS: 205, Casts: 40, Hits: 80, Crits: 30},
		10102: {ID: 10102, Name: "Stigma", TotalDamage: 654321, DPS: 1090, CastLog: []int32{1, 5, 9}},
	}

	blob, err := Marshal(skills)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got map[uint32]*types.Skill
	if err := Unmarshal(blob, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(got) != len(skills) {
		t.Fatalf("got %d skills, want %d", len(got), len(skills))
	}
	if got[10101].TotalDamage != 123456 {
		t.Errorf("total damage mismatch: got %d", got[10101].TotalDamage)
	}
	if len(got[10102].CastLog) != 3 {
		t.Errorf("cast log mismatch: got %v", got[10102].CastLog)
	}
}

func TestUnmarshal_CorruptBlob(t *testing.T) {
	var out map[string]string
	err := Unmarshal([]byte{0xff, 0x00, 0x01}, &out)
	if err == nil {
		t.Fatal("expected error on corrupt blob")
	}
	if !errors.Is(err, rerrors.New(rerrors.ErrCategorySerialization, rerrors.CodeDecodeFailed, "")) {
		t.Errorf("expected SERIALIZATION:DECODE_FAILED, got %v", err)
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("damage-point timelines survive the codec round trip", prop.ForAll(
		func(times []int64, damages []int64) bool {
			n := len(times)
			if len(damages) < n {
				n = len(damages)
			}
			in := make([]types.DamagePoint, 0, n)
			for i := 0; i < n; i++ {
				in = append(in, types.DamagePoint{Time: times[i], Damage: damages[i]})
			}

			blob, err := Marshal(in)
			if err != nil {
				return false
			}
			var out []types.DamagePoint
			if err := Unmarshal(blob, &out); err != nil {
				return false
			}
			if len(out) != len(in) {
				return false
			}
			for i := range in {
				if in[i] != out[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}
