package formatter

import (
	"fmt"

	"github.com/alexanderramin/canteiro/internal/domain"
)

// FormatStageList renders a project template in canonical order.
func FormatStageList(stages []*domain.Stage) string {
	if len(stages) == 0 {
		return Dim("Nenhuma etapa cadastrada.") + "\n"
	}
	rows := make([][]string, 0, len(stages))
	for _, st := range stages {
		state := StyleGreen.Render("ativa")
		name := st.Name
		if !st.IsActive {
			state = Dim("arquivada")
			name = Dim(name)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.OrderIndex),
			TruncID(st.ID),
			name,
			state,
		})
	}
	return Table{
		Headers:    []string{"#", "ID", "ETAPA", "SITUAÇÃO"},
		Rows:       rows,
		RightAlign: map[int]bool{0: true},
	}.Render()
}
