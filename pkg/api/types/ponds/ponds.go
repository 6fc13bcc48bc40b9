package ponds

import (
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

type Spec struct {
	FarmId   string   `json:"farmId"`
	Name     string   `json:"name"`
	VolumeM3 *float64 `json:"volumeM3,omitempty"`
}

func (s Spec) Bind() kdb.PondSpec {
	return kdb.PondSpec{FarmId: s.FarmId, Name: s.Name, VolumeM3: s.VolumeM3}
}

type Detail struct {
	PondId    string    `json:"pondId"`
	FarmId    string    `json:"farmId"`
	Name      string    `json:"name"`
	VolumeM3  *float64  `json:"volumeM3,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func Compose(p kdb.Pond) Detail {
	return Detail{
		PondId: p.PondId, FarmId: p.FarmId, Name: p.Name, VolumeM3: p.VolumeM3, CreatedAt: p.CreatedAt,
	}
}
