package update

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/model"
	"agendad/internal/views"
)

// openEditor prepares the form for a new activity (empty id) or an existing
// one. New activities inherit the configured default alarm lead.
func (m Model) openEditor(id string) Model {
	m.Editor = EditorState{Active: true, EditingID: id}

	var a model.Activity
	if id != "" {
		existing, err := m.Store.Get(id)
		if err != nil {
			m.Editor = EditorState{}
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		a = existing
	} else {
		a = model.Activity{
			Type:         model.TypeActivity,
			Date:         model.DayString(m.now()),
			Priority:     model.PriorityMedium,
			Color:        "#4CAF50",
			AlarmMinutes: m.Store.Settings().DefaultAlarmMinutes,
		}
	}

	values := [fieldCount]string{
		a.Title, a.Date, a.EndDate, a.Time,
		string(a.Type), string(a.Priority), a.Color, a.Description,
		strconv.Itoa(a.AlarmMinutes),
	}
	for i := range m.editorInputs {
		m.editorInputs[i].SetValue(values[i])
		m.editorInputs[i].Blur()
	}
	m.editorInputs[fieldTitle].Focus()
	return m
}

func (m Model) handleEditorKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Editor = EditorState{}
		m.Status = StatusBar{Text: "edit cancelled"}
		return m
	case "tab", "down":
		return m.focusEditorField(m.Editor.FieldIdx + 1)
	case "shift+tab", "up":
		return m.focusEditorField(m.Editor.FieldIdx - 1)
	case "enter":
		return m.saveEditor()
	}
	var cmd tea.Cmd
	m.editorInputs[m.Editor.FieldIdx], cmd = m.editorInputs[m.Editor.FieldIdx].Update(msg)
	_ = cmd
	return m
}

func (m Model) focusEditorField(idx int) Model {
	m.editorInputs[m.Editor.FieldIdx].Blur()
	m.Editor.FieldIdx = (idx + fieldCount) % fieldCount
	m.editorInputs[m.Editor.FieldIdx].Focus()
	return m
}

func (m Model) saveEditor() Model {
	alarmMinutes := 0
	if raw := strings.TrimSpace(m.editorInputs[fieldAlarm].Value()); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			m.Editor.Err = fmt.Sprintf("alarm minutes %q must be a non-negative integer", raw)
			return m
		}
		alarmMinutes = v
	}

	a := model.Activity{
		ID:           m.Editor.EditingID,
		Title:        strings.TrimSpace(m.editorInputs[fieldTitle].Value()),
		Date:         strings.TrimSpace(m.editorInputs[fieldDate].Value()),
		EndDate:      strings.TrimSpace(m.editorInputs[fieldEndDate].Value()),
		Time:         strings.TrimSpace(m.editorInputs[fieldTime].Value()),
		Type:         model.Type(strings.ToLower(strings.TrimSpace(m.editorInputs[fieldType].Value()))),
		Priority:     model.Priority(strings.ToLower(strings.TrimSpace(m.editorInputs[fieldPriority].Value()))),
		Color:        strings.TrimSpace(m.editorInputs[fieldColor].Value()),
		Description:  strings.TrimSpace(m.editorInputs[fieldDescription].Value()),
		AlarmMinutes: alarmMinutes,
	}
	if m.Editor.EditingID != "" {
		existing, err := m.Store.Get(m.Editor.EditingID)
		if err == nil {
			a.AlarmTriggered = existing.AlarmTriggered
			a.LastAlarmTriggeredDate = existing.LastAlarmTriggeredDate
		}
	}

	var err error
	var saved model.Activity
	if m.Editor.EditingID == "" {
		saved, err = m.Store.Create(a)
	} else {
		saved = a
		err = m.Store.Update(m.Editor.EditingID, a)
	}
	if err != nil {
		m.Editor.Err = err.Error()
		return m
	}

	m.Editor = EditorState{}
	m.Status = StatusBar{Text: fmt.Sprintf("saved %q", saved.Title)}
	if m.Runner != nil {
		m.Runner.Wake()
	}
	m.refreshAll()
	return m
}

func (m Model) renderEditorView() string {
	title := "new activity"
	if m.Editor.EditingID != "" {
		title = "edit activity"
	}
	fields := make([]views.EditorFieldData, fieldCount)
	for i := range m.editorInputs {
		fields[i] = views.EditorFieldData{
			Label:   editorLabels[i],
			View:    m.editorInputs[i].View(),
			Focused: i == m.Editor.FieldIdx,
		}
	}
	return views.RenderEditor(views.EditorData{
		Title:     title,
		Fields:    fields,
		ErrorText: m.Editor.Err,
	})
}
