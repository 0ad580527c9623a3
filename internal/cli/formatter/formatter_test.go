package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/rollup"
	"github.com/alexanderramin/canteiro/internal/service"
)

func TestTable_AlignsOnVisibleWidth(t *testing.T) {
	out := Table{
		Headers:    []string{"UNIDADE", "N"},
		Rows:       [][]string{{StyleGreen.Render("301"), "7"}, {"1002", "12"}},
		RightAlign: map[int]bool{1: true},
	}.Render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l))
	}
	assert.True(t, strings.HasSuffix(lines[2], " 7"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable(nil, nil))
}

func TestRenderProgress(t *testing.T) {
	assert.Contains(t, RenderProgress(50, 10), "50%")
	assert.Contains(t, RenderProgress(33.333, 10), "33.33%")
	assert.Contains(t, RenderProgress(250, 10), "100%")
	assert.Contains(t, RenderProgress(-3, 10), "0%")

	full := RenderProgress(100, 4)
	assert.Equal(t, 4, strings.Count(full, filledBlock))
	empty := RenderProgress(0, 4)
	assert.Equal(t, 4, strings.Count(empty, emptyBlock))
}

func TestStatusPill_UsesLabels(t *testing.T) {
	assert.Contains(t, StatusPill(domain.StatusPending), "Pendente")
	assert.Contains(t, StatusPill(domain.StatusInProgress), "Em andamento")
	assert.Contains(t, StatusPill(domain.StatusDone), "Concluída")
	assert.Contains(t, StatusPill(domain.Status("weird")), "Pendente")
}

func TestFormatSummary_ListsEveryBucket(t *testing.T) {
	out := FormatSummary(rollup.Summary{
		TotalUnits:  3,
		AvgProgress: 100.0 / 3,
		Counts:      map[domain.Status]int{domain.StatusPending: 1, domain.StatusInProgress: 1, domain.StatusDone: 1},
	})
	assert.Contains(t, out, "33.33%")
	assert.Contains(t, out, "Pendente")
	assert.Contains(t, out, "Concluída")
}

func TestFormatLogs_DescribesChanges(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := []*domain.StageLog{
		{
			UserID:    "u-1",
			Action:    domain.ActionStatusChanged,
			OldValue:  `{"notes":"","status":"pending"}`,
			NewValue:  `{"notes":"","status":"done"}`,
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			UserID:    "0123456789abcdef",
			Action:    domain.ActionPhotoAdded,
			NewValue:  `{"caption":"laje"}`,
			CreatedAt: now.Add(-48 * time.Hour),
		},
	}
	out := FormatLogs(logs, map[string]string{"u-1": "mestre@obra.com.br"}, now)

	assert.Contains(t, out, "mestre@obra.com.br")
	assert.Contains(t, out, "status: pending → done")
	assert.NotContains(t, out, "notes:")
	assert.Contains(t, out, "caption: laje")
	assert.Contains(t, out, "01234567")
	assert.Contains(t, out, "há 5 min")
}

func TestFormatGeneration(t *testing.T) {
	out := FormatGeneration(&service.GenerationResult{
		Candidates:  []string{"101", "102"},
		Skipped:     []string{"101"},
		Created:     []*domain.Unit{{Identifier: "102"}},
		Propagation: &service.PropagationResult{Created: 3, AffectedUnits: 1},
	})
	assert.Contains(t, out, "2 candidata(s)")
	assert.Contains(t, out, "Já existentes")
	assert.Contains(t, out, "1 unidade(s) criada(s)")
	assert.Contains(t, out, "3 etapa(s) instanciada(s) em 1 unidade(s)")
}

func TestFormatStageViews_MarksArchivedAndCustom(t *testing.T) {
	custom := "Pintura externa"
	out := FormatStageViews([]service.StageView{
		{
			Instance: &domain.UnitStage{ID: "a", OrderIndex: 1, Status: domain.StatusDone, CustomName: &custom},
			Stage:    &domain.Stage{IsActive: true},
			Name:     custom,
		},
		{
			Instance: &domain.UnitStage{ID: "b", OrderIndex: 2, Status: domain.StatusPending},
			Stage:    &domain.Stage{IsActive: false},
			Name:     "Reboco",
		},
	})
	assert.Contains(t, out, "Pintura externa")
	assert.Contains(t, out, " *")
	assert.Contains(t, out, "(arquivada)")
	assert.Equal(t, 1, strings.Count(out, "(arquivada)"))
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", HumanBytes(512))
	assert.Equal(t, "1.5 KiB", HumanBytes(1536))
	assert.Equal(t, "0 B", HumanBytes(-1))
}
