package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/rollup"
	"github.com/alexanderramin/canteiro/internal/service"
)

// FormatProjectList renders the project list with each project's roll-up.
func FormatProjectList(items []service.ProjectOverview) string {
	if len(items) == 0 {
		return Dim("Nenhuma obra encontrada.") + "\n"
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		p := it.Project
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.DisplayName()),
			domain.CoalesceStr(p.ClientName, Dim("—")),
			domain.CoalesceStr(p.City, Dim("—")),
			fmt.Sprintf("%d", it.Summary.TotalUnits),
			RenderProgress(it.Summary.AvgProgress, 12),
		})
	}
	return Table{
		Headers:    []string{"ID", "OBRA", "CLIENTE", "CIDADE", "UNIDADES", "PROGRESSO"},
		Rows:       rows,
		RightAlign: map[int]bool{4: true},
	}.Render()
}

// FormatSummary renders the status buckets and the average progress.
func FormatSummary(s rollup.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold("Progresso médio"), RenderProgress(s.AvgProgress, 20))
	fmt.Fprintf(&b, "%s  %d\n", Bold("Unidades"), s.TotalUnits)
	for _, st := range domain.Statuses {
		fmt.Fprintf(&b, "  %s  %d\n", StatusPill(st), s.Count(st))
	}
	return b.String()
}

// FormatProjectDetail renders the project header block.
func FormatProjectDetail(p *domain.Project) string {
	var lines []string
	lines = append(lines, Bold(p.DisplayName())+"  "+TruncID(p.ID))
	for _, kv := range [][2]string{
		{"Cliente", p.ClientName},
		{"Cidade", p.City},
		{"Endereço", p.Address},
		{"Descrição", p.Description},
	} {
		if strings.TrimSpace(kv[1]) != "" {
			lines = append(lines, fmt.Sprintf("%s %s", Dim(kv[0]+":"), kv[1]))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatProjectView renders the project page: details, summary, template
// and units.
func FormatProjectView(v *service.ProjectView) string {
	var b strings.Builder
	b.WriteString(RenderBox("obra", FormatProjectDetail(v.Project)))
	b.WriteString("\n\n")
	b.WriteString(Header("Resumo"))
	b.WriteString("\n")
	b.WriteString(FormatSummary(v.Summary))
	if v.MissingStages > 0 {
		b.WriteString(Warn("%d unidade(s) sem etapas; use 'unit fill' para aplicar o modelo", v.MissingStages))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Header("Etapas"))
	b.WriteString("\n")
	b.WriteString(FormatStageList(v.Stages))
	b.WriteString("\n")
	b.WriteString(Header("Unidades"))
	b.WriteString("\n")
	b.WriteString(FormatUnitList(v.Units))
	return b.String()
}
