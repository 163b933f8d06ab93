package main

type Command struct {
	Version struct{} `cmd:"" help:"Print version information."`
	Serve   struct {
		Config string `help:"config file path" short:"c"`
	} `cmd:"" help:"Run the ERP server."`
	Backup struct {
		Config      string `help:"config file path" short:"c"`
		Name        string `help:"backup name" short:"n"`
		IncludeLogs bool   `help:"include application logs in the archive"`
	} `cmd:"" help:"Create a backup archive of the store."`
	Restore struct {
		Config string `help:"config file path" short:"c"`
		File   string `arg:"" help:"archive filename to restore from"`
	} `cmd:"" help:"Restore the store from a backup archive."`
}
