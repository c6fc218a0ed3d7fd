// Package audit persists dispatcher events as audit log rows.
package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"orgroles/internal/events"
	"orgroles/internal/models"
)

// Audited lists the events written to the audit log.
var Audited = []string{
	events.UserRoleMapped,
	events.OnboardingCompleted,
	events.PrimaryContextChanged,
	events.ImportCompleted,
	events.StructureChanged,
	events.StructureDeleted,
}

type Recorder struct {
	DB *gorm.DB
}

// Subscribe registers the recorder for every audited event.
func (r Recorder) Subscribe(d *events.Dispatcher) {
	for _, name := range Audited {
		d.On(name, r.Record)
	}
}

func (r Recorder) Record(ctx context.Context, ev events.Event) error {
	var metaJSON []byte
	if len(ev.Data) > 0 {
		var err error
		if metaJSON, err = json.Marshal(ev.Data); err != nil {
			return err
		}
	}

	initiatorName := "system"
	if ev.UserID > 0 {
		var u models.User
		if err := r.DB.WithContext(ctx).Select("id", "name", "email").First(&u, ev.UserID).Error; err == nil {
			initiatorName = u.Name
			if initiatorName == "" {
				initiatorName = u.Email
			}
		}
	}

	entry := models.AuditLog{
		UserID:        ev.UserID,
		Action:        ev.Name,
		ResourceType:  ev.ResourceType,
		ResourceID:    ev.ResourceID,
		Metadata:      datatypes.JSON(metaJSON),
		IP:            ev.IP,
		UserAgent:     ev.UserAgent,
		InitiatorName: initiatorName,
		CreatedAt:     ev.At,
	}
	return r.DB.WithContext(ctx).Create(&entry).Error
}
