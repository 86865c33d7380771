package repl

import "github.com/chzyer/readline"

// Commands lists the words offered for completion.
var Commands = []string{
	"PING", "ECHO", "SET", "GET", "DEL", "EXISTS", "DBSIZE",
	"help", "exit", "quit",
}

func newCompleter() readline.AutoCompleter {
	items := make([]readline.PrefixCompleterInterface, len(Commands))
	for i, cmd := range Commands {
		items[i] = readline.PcItem(cmd)
	}
	return readline.NewPrefixCompleter(items...)
}
