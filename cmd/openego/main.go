// Command openego inspects and exports egocentric hand-object corpora.
package main

func main() {
	if err := Execute(); err != nil {
		LogFatal("openego", err)
	}
}
