package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/service"
)

var actionLabels = map[domain.LogAction]string{
	domain.ActionStatusChanged: "situação alterada",
	domain.ActionNotesUpdated:  "observações",
	domain.ActionPhotoAdded:    "foto adicionada",
	domain.ActionPhotoDeleted:  "foto removida",
}

// FormatLogs renders an audit trail, newest first as given. users maps user
// IDs to emails; unknown IDs are shown truncated.
func FormatLogs(logs []*domain.StageLog, users map[string]string, now time.Time) string {
	if len(logs) == 0 {
		return Dim("Sem histórico.") + "\n"
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		who := users[l.UserID]
		if who == "" {
			who = TruncID(l.UserID)
		}
		rows = append(rows, []string{
			HumanTimestamp(l.CreatedAt, now),
			who,
			domain.CoalesceStr(actionLabels[l.Action], string(l.Action)),
			describeChange(l.OldValue, l.NewValue),
		})
	}
	return RenderTable([]string{"QUANDO", "QUEM", "AÇÃO", "ALTERAÇÃO"}, rows)
}

// describeChange summarises two JSON snapshots as "key: old → new" for the
// keys that differ.
func describeChange(oldJSON, newJSON string) string {
	before, after := decodeSnapshot(oldJSON), decodeSnapshot(newJSON)
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var parts []string
	for _, k := range sorted {
		o, n := fmt.Sprint(before[k]), fmt.Sprint(after[k])
		switch {
		case before == nil:
			parts = append(parts, fmt.Sprintf("%s: %s", k, n))
		case after == nil:
			parts = append(parts, fmt.Sprintf("%s: %s", k, o))
		case o != n:
			parts = append(parts, fmt.Sprintf("%s: %s → %s", k, o, n))
		}
	}
	return strings.Join(parts, "; ")
}

func decodeSnapshot(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]any{"valor": raw}
	}
	return m
}

// FormatPhotos renders photos with their temporary links.
func FormatPhotos(views []service.PhotoView) string {
	if len(views) == 0 {
		return Dim("Nenhuma foto.") + "\n"
	}
	var b strings.Builder
	for _, v := range views {
		p := v.Photo
		fmt.Fprintf(&b, "%s  %s  %s  %s\n", TruncID(p.ID), Bold(domain.CoalesceStr(p.Caption, "(sem legenda)")),
			Dim(p.Kind), Dim(HumanBytes(p.Size)))
		fmt.Fprintf(&b, "    %s\n", StyleBlue.Render(v.URL))
	}
	return b.String()
}
