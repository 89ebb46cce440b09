package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"friendly-chat/contract"
	"friendly-chat/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const maxCellLength = 48

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	collection := flag.String("collection", "messages", "Collection to print")
	orderBy := flag.String("order-by", "timestamp", "Field to order by, empty for document id")
	limit := flag.Int("limit", 0, "Maximum number of documents, 0 for all")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	store := storage.NewDocumentStore(db, logs.GetLoggerFromLevel(slog.LevelError))
	result, err := inspect(store, *collection, *orderBy, *limit)
	if err != nil {
		log.Fatal(err)
	}

	fields := fieldNames(result.documents)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(append([]string{"ID"}, fields...))
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, document := range result.documents {
		row := []string{document.Ref.ID}
		for _, field := range fields {
			row = append(row, formatValue(document.Data[field]))
		}
		table.Append(row)
	}
	table.Render()
	fmt.Printf("%d document(s) in %q ordered by %s\n", len(result.documents), *collection, result.orderedBy())
	if result.excluded > 0 {
		fmt.Printf("%d document(s) without %q not shown\n", result.excluded, result.orderBy)
	}
}

type inspection struct {
	documents []contract.Document
	orderBy   string
	excluded  int
}

func (i inspection) orderedBy() string {
	if i.orderBy == "" {
		return "document id"
	}
	return i.orderBy
}

// inspect lists a collection newest first. When no document has the orderBy
// field it falls back to document id order instead of listing nothing.
func inspect(store *storage.DocumentStore, collection, orderBy string, limit int) (inspection, error) {
	all, err := store.Get(contract.Query{Collection: collection, Direction: contract.Desc})
	if err != nil {
		return inspection{}, err
	}
	withField := lo.CountBy(all.Documents, func(d contract.Document) bool {
		_, ok := d.Data[orderBy]
		return ok
	})
	if orderBy == "" || withField == 0 {
		documents := all.Documents
		if limit > 0 && len(documents) > limit {
			documents = documents[:limit]
		}
		return inspection{documents: documents}, nil
	}

	ordered, err := store.Get(contract.Query{Collection: collection, OrderBy: orderBy, Direction: contract.Desc, Limit: limit})
	if err != nil {
		return inspection{}, err
	}
	return inspection{documents: ordered.Documents, orderBy: orderBy, excluded: len(all.Documents) - withField}, nil
}


func fieldNames(documents []contract.Document) []string {
	names := lo.Uniq(lo.FlatMap(documents, func(d contract.Document, _ int) []string {
		return lo.Keys(d.Data)
	}))
	sort.Strings(names)
	return names
}

func formatValue(v any) string {
	var s string
	switch value := v.(type) {
	case nil:
		return ""
	case time.Time:
		s = value.Local().Format(time.DateTime)
	default:
		s = fmt.Sprint(value)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) > maxCellLength {
		s = string([]rune(s)[:maxCellLength-1]) + "…"
	}
	return s
}
