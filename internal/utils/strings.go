package utils

// ToSnakeCase turns a datatable or archive entry name into a snake_case
// SQL identifier: camel-case humps get underscores, and path separators,
// dashes and spaces become underscores outright, so both "CreatureSpawns"
// and "creature-spawns" yield "creature_spawns".
func ToSnakeCase(s string) string {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '/' || c == '\\' || c == '-' || c == ' ':
			if len(out) > 0 && out[len(out)-1] != '_' {
				out = append(out, '_')
			}
		case c >= 'A' && c <= 'Z':
			if len(out) > 0 && out[len(out)-1] != '_' {
				out = append(out, '_')
			}
			out = append(out, c-'A'+'a')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
