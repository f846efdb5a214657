// Package fixture embeds the demo data set: 25 comment records across five
// posts, shaped like the jsonplaceholder /comments resource.
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/imgajeed76/lttable/internal/record"
)

//go:embed comments.json
var commentsJSON []byte

// Resource is the API URL the fixtures are served under.
const Resource = "/comments"

// Comments returns a fresh copy of the comment records.
func Comments() []record.Record {
	var rows []record.Record
	if err := json.Unmarshal(commentsJSON, &rows); err != nil {
		panic(fmt.Sprintf("fixture: bad comments.json: %v", err))
	}
	return rows
}

// CommentColumns returns the column definitions of the demo table.
func CommentColumns() []record.Column {
	return []record.Column{
		{ID: 1, Title: "Post ID", DataPath: "postId", Width: 8, Sortable: true, Filterable: true, Filters: record.FilterValues{"1", "2", "3"}},
		{ID: 2, Title: "ID", DataPath: "id", Width: 5, Sortable: true},
		{ID: 3, Title: "Name", DataPath: "name", Width: 28, Sortable: true},
		{ID: 4, Title: "Email", DataPath: "email", Width: 28, Sortable: true, Filterable: true,
			Filters: record.FilterValues{"Presley.Mueller@myrl.com", "Dallas@ole.me", "Mallory_Kunze@marie.org"}},
		{ID: 5, Title: "Body", DataPath: "body", Width: 40},
	}
}
