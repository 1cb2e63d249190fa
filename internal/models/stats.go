// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// StatBucket counts records of one kind inside the dashboard time windows.
// The windows nest, so Total >= Month >= Week >= Today always holds.
type StatBucket struct {
	Total int `json:"total"`
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

// Stats is the aggregate view shown on the admin dashboard.
type Stats struct {
	Contacts   StatBucket `json:"contacts"`
	Chats      StatBucket `json:"chats"`
	Calls      StatBucket `json:"calls"`
	Newsletter StatBucket `json:"newsletter"`
}
