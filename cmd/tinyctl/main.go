// Command tinyctl replays allocation traces against a tinyheap allocator and
// reports the resulting heap layout and counters.
package main

func main() {
	execute()
}
