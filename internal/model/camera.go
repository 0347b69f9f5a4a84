package model

import "time"

// Camera is an inspection camera, keyed by its serial number.
type Camera struct {
	SerialNumber string  `json:"serial_number"`
	GroupID      *int    `json:"group_id"`
	SubGroup     *int    `json:"sub_group"`
	IP           *string `json:"ip"`
}

// Trigger is one part passing the inspection station; every camera shoots an image per trigger.
type Trigger struct {
	ID           int64      `json:"id"`
	Timestamp    *time.Time `json:"timestamp"`
	Label        *int       `json:"label"`
	PartInstance *string    `json:"part_instance"`
	Belt         *string    `json:"belt"`
	Part         *string    `json:"part"`
}

// PartInformation describes a part type. Regions reference it by JobNum.
type PartInformation struct {
	ID            int64    `json:"id"`
	Model         *string  `json:"model"`
	PartName      *string  `json:"part_name"`
	PartNumber    *string  `json:"part_number"`
	PackoutAmount *int     `json:"packout_amount"`
	Length        *float64 `json:"length"`
	JobNum        string   `json:"job_num"`
}
