package utils_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils"
)

func TestMap(t *testing.T) {
	t.Run("Map maps slice to another, in order", func(t *testing.T) {
		called := 0
		output := utils.Map([]int{3, 5, 7, 11}, func(v int) int {
			called += 1
			return v * 2
		})

		if called != 4 {
			t.Errorf("mapper is called %d times", called)
		}
		if diff := cmp.Diff([]int{6, 10, 14, 22}, output); diff != "" {
			t.Errorf("mapped result (-want +got):\n%s", diff)
		}
	})

	t.Run("nil is mapped to an empty JSON array", func(t *testing.T) {
		output := utils.Map([]string(nil), func(v string) int { return len(v) })
		b, err := json.Marshal(output)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "[]" {
			t.Errorf("encoded: %s", b)
		}
	})
}
