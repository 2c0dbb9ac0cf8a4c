package docmap

import "testing"

func TestNamingStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy func(string) string
		in       string
		want     string
	}{
		{"as-is", AsIsNaming, "OrderID", "OrderID"},
		{"lower", LowerCaseNaming, "OrderID", "orderid"},
		{"camel simple", CamelCaseNaming, "Name", "name"},
		{"camel acronym", CamelCaseNaming, "OrderID", "orderID"},
		{"camel all caps", CamelCaseNaming, "ID", "id"},
		{"camel acronym prefix", CamelCaseNaming, "HTTPPort", "httpPort"},
		{"camel already lower", CamelCaseNaming, "name", "name"},
		{"snake simple", SnakeCaseNaming, "Name", "name"},
		{"snake compound", SnakeCaseNaming, "OrderID", "order_id"},
		{"snake acronym prefix", SnakeCaseNaming, "HTTPPort", "http_port"},
		{"snake mixed", SnakeCaseNaming, "CreatedAtTime", "created_at_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy(tt.in); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
			}
		})
	}
}
