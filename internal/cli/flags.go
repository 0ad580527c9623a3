package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
)

// statusValue is a pflag.Value accepting pending, in_progress or done in
// any case, with '-' for '_'. Empty means unset.
type statusValue struct {
	status domain.Status
}

func (v *statusValue) String() string { return string(v.status) }
func (v *statusValue) Type() string   { return "status" }

func (v *statusValue) Set(s string) error {
	st := domain.Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if st != "" && !st.Valid() {
		return fmt.Errorf("use pending, in_progress ou done")
	}
	v.status = st
	return nil
}

// sortValue is a pflag.Value accepting the listing sort keys.
type sortValue struct {
	key listing.SortKey
}

func (v *sortValue) String() string { return string(v.key) }
func (v *sortValue) Type() string   { return "sort" }

func (v *sortValue) Set(s string) error {
	k, err := listing.ParseSortKey(s)
	if err != nil {
		return err
	}
	v.key = k
	return nil
}

func sortKeysHelp() string {
	keys := make([]string, len(listing.SortKeys))
	for i, k := range listing.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}

// listFlags are the filter and sort flags shared by list commands.
type listFlags struct {
	query  string
	status statusValue
	sort   sortValue
}

func (f *listFlags) register(fs *pflag.FlagSet, withStatus bool) {
	fs.StringVarP(&f.query, "search", "s", "", "Busca sem acentos nem caixa")
	if withStatus {
		fs.Var(&f.status, "status", "Filtra por situação (pending, in_progress, done)")
	}
	fs.Var(&f.sort, "sort", "Ordenação: "+sortKeysHelp())
}

func (f *listFlags) filter() listing.UnitFilter {
	return listing.UnitFilter{Status: f.status.status, Query: f.query}
}

func addProjectFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVarP(target, "project", "p", "", "Obra (nome, ID ou prefixo do ID)")
}

func addYesFlag(fs *pflag.FlagSet, target *bool) {
	fs.BoolVarP(target, "yes", "y", false, "Confirma sem perguntar")
}

func parseDirection(s string) (domain.Direction, error) {
	dir, ok := domain.ParseDirection(s)
	if !ok {
		return "", fmt.Errorf("direção inválida %q: use up ou down", s)
	}
	return dir, nil
}
