package scores

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestScoreboardSQL pins the statements to the schema and, above all,
// the parameter order Page relies on: maxItems is $1, start is $2.
func TestScoreboardSQL(t *testing.T) {
	if !strings.Contains(createTableSQL, "CREATE TABLE IF NOT EXISTS retired_players") {
		t.Errorf("table statement lost its name: %s", createTableSQL)
	}
	for _, col := range []string{"name varchar(255) NOT NULL", "score int NOT NULL", "play_time real NOT NULL"} {
		if !strings.Contains(createTableSQL, col) {
			t.Errorf("table statement misses column %q", col)
		}
	}

	if !strings.Contains(createIndexSQL, "idx_retired_players_rank") {
		t.Errorf("index statement lost its name: %s", createIndexSQL)
	}
	if !strings.Contains(createIndexSQL, "(score DESC, play_time ASC, name ASC)") {
		t.Errorf("index does not match the page ordering: %s", createIndexSQL)
	}

	if insertSQL != `INSERT INTO retired_players (name, score, play_time) VALUES ($1, $2, $3)` {
		t.Errorf("insert statement changed: %s", insertSQL)
	}

	if !strings.Contains(pageSQL, "ORDER BY score DESC, play_time ASC, name ASC") {
		t.Errorf("page ordering changed: %s", pageSQL)
	}
	if !strings.Contains(pageSQL, "LIMIT $1 OFFSET $2") {
		t.Errorf("page parameter order changed: %s", pageSQL)
	}
}

// TestRecordWireShape pins the JSON field names of a scoreboard row.
func TestRecordWireShape(t *testing.T) {
	data, err := json.Marshal(Record{Name: "Vasya", Score: 42, PlayTime: 120.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"name":"Vasya","score":42,"playTime":120.5}` {
		t.Errorf("record json = %s", got)
	}
}
