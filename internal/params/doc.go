// Package params turns command-line parameters into statement arguments.
//
// Named parameters come from repeated --param key=value flags and an optional
// .env-style --params-file; they bind @key placeholders:
//
//	simplepg exec "UPDATE users SET name = @name WHERE id = @id" --param id=7 --param name=alice
//
// Positional arguments after the statement bind $1, $2, ...:
//
//	simplepg query "SELECT * FROM users WHERE id = $1" 7
package params
