package model

// AlarmSettings holds the global alarm preferences persisted alongside the
// activity snapshot.
type AlarmSettings struct {
	DefaultAlarmMinutes int    `json:"defaultAlarmMinutes"`
	GlobalAlarmsEnabled bool   `json:"globalAlarmsEnabled"`
	LastSave            string `json:"lastSave,omitempty"`
}

// DefaultAlarmSettings mirrors the first-run preferences: 15 minutes of lead
// time, alarms enabled.
func DefaultAlarmSettings() AlarmSettings {
	return AlarmSettings{
		DefaultAlarmMinutes: 15,
		GlobalAlarmsEnabled: true,
	}
}

// AlarmLeadOptions lists the selectable lead times, in minutes. Zero means
// "at the moment the activity starts".
func AlarmLeadOptions() []int {
	return []int{5, 15, 30, 60, 1440, 0}
}
