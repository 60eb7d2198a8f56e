package totdfs_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/strategy/totdfs"
)

func TestPairwiseSorter(t *testing.T) {
	type testCase struct {
		answers map[string]string
		expect  []string
	}

	// answers maps "first|second" action names to the comparer answer.
	runTest := func(tc testCase) func(t *testing.T) {
		return func(t *testing.T) {
			var calls int
			comparer := totdfs.ComparerFunc(func(ctx context.Context, input *totdfs.SortInput, a, b planlib.Thought) (string, error) {
				calls++
				return tc.answers[a.(planlib.Action).Name+"|"+b.(planlib.Action).Name], nil
			})

			sorted, err := totdfs.NewPairwiseSorter(comparer).Sort(context.Background(), &totdfs.SortInput{
				Thoughts: []planlib.Thought{
					planlib.Action{Name: "a"},
					planlib.Action{Name: "b"},
					planlib.Action{Name: "c"},
				},
			})
			gt.NoError(t, err)
			gt.Equal(t, calls, 3)

			names := make([]string, len(sorted))
			for i, s := range sorted {
				names[i] = s.(planlib.Action).Name
			}
			gt.Equal(t, names, tc.expect)
		}
	}

	t.Run("second wins everything", runTest(testCase{
		answers: map[string]string{"a|b": "2", "a|c": "2", "b|c": "1"},
		expect:  []string{"b", "c", "a"},
	}))

	t.Run("all ties keep generation order", runTest(testCase{
		answers: map[string]string{"a|b": "tie", "a|c": "", "b|c": "equal"},
		expect:  []string{"a", "b", "c"},
	}))

	t.Run("answers are trimmed", runTest(testCase{
		answers: map[string]string{"a|b": " 2\n", "a|c": "2", "b|c": "2"},
		expect:  []string{"c", "b", "a"},
	}))

	t.Run("tie splits half points", runTest(testCase{
		// a: 1.5, b: 0, c: 1.5
		answers: map[string]string{"a|b": "1", "a|c": "x", "b|c": "2"},
		expect:  []string{"a", "c", "b"},
	}))
}
