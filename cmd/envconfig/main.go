// Command envconfig resolves schema declaration files against the environment.
package main

func main() {
	Execute()
}
