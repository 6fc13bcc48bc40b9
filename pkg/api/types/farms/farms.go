package farms

import (
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

type Spec struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

func (s Spec) Bind() kdb.FarmSpec {
	return kdb.FarmSpec{Name: s.Name, Location: s.Location}
}

type Detail struct {
	FarmId    string    `json:"farmId"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func Compose(f kdb.Farm) Detail {
	return Detail{FarmId: f.FarmId, Name: f.Name, Location: f.Location, CreatedAt: f.CreatedAt}
}
