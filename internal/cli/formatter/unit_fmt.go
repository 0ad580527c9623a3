package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/service"
)

// FormatUnitList renders units with their stored progress.
func FormatUnitList(units []*domain.Unit) string {
	if len(units) == 0 {
		return Dim("Nenhuma unidade encontrada.") + "\n"
	}
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		rows = append(rows, []string{
			Bold(u.Label()),
			TruncID(u.ID),
			StatusPill(u.Status),
			RenderProgress(float64(u.Progress), 12),
		})
	}
	return RenderTable([]string{"UNIDADE", "ID", "SITUAÇÃO", "PROGRESSO"}, rows)
}

// FormatUnitDetail renders the unit page with its stages in display order.
func FormatUnitDetail(d *service.UnitDetail) string {
	var b strings.Builder
	head := fmt.Sprintf("%s  %s\n%s %s\n%s %s",
		Bold(d.Unit.Label()), TruncID(d.Unit.ID),
		Dim("Obra:"), d.Project.DisplayName(),
		Dim("Situação:"), StatusPill(d.Status),
	)
	b.WriteString(RenderBox("unidade", head+"\n"+RenderProgress(float64(d.Progress), 24)))
	b.WriteString("\n\n")
	b.WriteString(Header("Etapas"))
	b.WriteString("\n")
	b.WriteString(FormatStageViews(d.Stages))
	return b.String()
}

// FormatStageViews renders a unit's stage instances.
func FormatStageViews(views []service.StageView) string {
	if len(views) == 0 {
		return Dim("Unidade sem etapas.") + "\n"
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		name := v.Name
		if v.Instance.CustomName != nil {
			name += Dim(" *")
		}
		if v.Archived() {
			name += Dim(" (arquivada)")
		}
		notes := v.Instance.Notes
		if len([]rune(notes)) > 40 {
			notes = string([]rune(notes)[:39]) + "…"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.Instance.OrderIndex),
			TruncID(v.Instance.ID),
			name,
			StatusPill(v.Instance.Status),
			OptionalTime(v.Instance.StartedAt),
			OptionalTime(v.Instance.FinishedAt),
			notes,
		})
	}
	return Table{
		Headers:    []string{"#", "ID", "ETAPA", "SITUAÇÃO", "INÍCIO", "FIM", "OBSERVAÇÕES"},
		Rows:       rows,
		RightAlign: map[int]bool{0: true},
	}.Render()
}

// FormatGeneration reports a floor generation step by step.
func FormatGeneration(r *service.GenerationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d candidata(s)\n", Dim("Planta:"), len(r.Candidates))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "%s %s\n", Dim("Já existentes:"), strings.Join(r.Skipped, ", "))
	}
	b.WriteString(Success("%d unidade(s) criada(s)", len(r.Created)))
	b.WriteString("\n")
	if r.Propagation != nil {
		b.WriteString(Success("%d etapa(s) instanciada(s) em %d unidade(s)", r.Propagation.Created, r.Propagation.AffectedUnits))
		b.WriteString("\n")
	}
	return b.String()
}
