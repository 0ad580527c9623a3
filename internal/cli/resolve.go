package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/canteiro/internal/listing"
)

// match picks the single candidate whose key folds equal to input, or whose
// ID starts with input. what names the resource in errors.
func match(what, input string, ids, keys []string) (string, error) {
	folded := listing.Fold(input)
	for i, k := range keys {
		if ids[i] == input || listing.Fold(k) == folded {
			return ids[i], nil
		}
	}
	var found []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s não encontrada: %q", what, input)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("prefixo %q de %s é ambíguo (%d correspondências)", input, what, len(found))
	}
}

// resolveProjectID accepts a project ID, an ID prefix or the project name.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("informe a obra com --project")
	}
	projects, err := app.Projects.List(ctx, "", listing.SortName)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(projects))
	names := make([]string, len(projects))
	for i, p := range projects {
		ids[i], names[i] = p.Project.ID, p.Project.Name
	}
	return match("obra", input, ids, names)
}

// resolveUnitID accepts a unit identifier or ID prefix within projectID. With
// no project only a full unit ID is accepted.
func resolveUnitID(ctx context.Context, app *App, projectID, input string) (string, error) {
	input = strings.TrimSpace(input)
	if projectID == "" {
		u, err := app.Units.Get(ctx, input)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}
	units, err := app.Units.List(ctx, projectID, listing.UnitFilter{}, listing.SortIdentifierAsc)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(units))
	idents := make([]string, len(units))
	for i, u := range units {
		ids[i], idents[i] = u.ID, u.Identifier
	}
	return match("unidade", input, ids, idents)
}

// resolveStageID accepts a template stage name or ID prefix within projectID.
func resolveStageID(ctx context.Context, app *App, projectID, input string) (string, error) {
	stages, err := app.Stages.List(ctx, projectID, true)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(stages))
	names := make([]string, len(stages))
	for i, st := range stages {
		ids[i], names[i] = st.ID, st.Name
	}
	return match("etapa", strings.TrimSpace(input), ids, names)
}

// resolveStepID accepts "<unit>:<stage name>" or a full unit stage ID. The
// unit part is resolved like resolveUnitID; the stage part matches the name
// the instance is displayed under or an instance ID prefix.
func resolveStepID(ctx context.Context, app *App, projectID, input string) (string, error) {
	unitRef, stageRef, ok := strings.Cut(input, ":")
	if !ok {
		us, err := app.UnitStages.Get(ctx, strings.TrimSpace(input))
		if err != nil {
			return "", err
		}
		return us.ID, nil
	}
	unitID, err := resolveUnitID(ctx, app, projectID, unitRef)
	if err != nil {
		return "", err
	}
	detail, err := app.Units.Detail(ctx, unitID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(detail.Stages))
	names := make([]string, len(detail.Stages))
	for i, v := range detail.Stages {
		ids[i], names[i] = v.Instance.ID, v.Name
	}
	return match("etapa da unidade", strings.TrimSpace(stageRef), ids, names)
}
