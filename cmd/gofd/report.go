// report.go --  This file is part of goFD project.
// Mirzaeva Irina, 2024
//
//	goFD is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// report is the human readable run output, the <input>.out file.
type report struct {
	w     io.Writer
	close func() error
}

func newReport(w io.Writer) *report {
	return &report{w: w, close: func() error { return nil }}
}

// openReport creates path, or writes to stdout when path is "-".
func openReport(path string) (*report, error) {
	if path == "-" {
		return newReport(os.Stdout), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report{w: file, close: file.Close}, nil
}

// reportPath replaces the extension of the input file with "out".
func reportPath(input string) string {
	if input == "" {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".out"
}

func (r *report) Close() error { return r.close() }

func (r *report) println(a ...any) {
	fmt.Fprintln(r.w, a...)
}

func (r *report) printf(format string, a ...any) {
	fmt.Fprintf(r.w, format, a...)
}

func (r *report) appInfo() {
	banner := []string{
		"                 __________      |",
		"   ____ _____   / ____/ __ \\     | Author: Mirzaeva Irina Valerievna",
		"  / __ `/ __ \\ / /_  / / / /     | email: dairdre@gmail.com",
		" / /_/ / /_/ // __/ / /_/ /      | Nikolaev Institute of Inorganic Chemistry SB RAS (http://niic.nsc.ru/)",
		" \\__, /\\____//_/   /_____/       | Novosibirsk, Russia",
		"/____/                           | FD stands for Finite Differences",
		"                                 | Have Fun!!!",
	}
	r.println()
	r.println(strings.Join(banner, "\n"))
	r.println()
}

func (r *report) delimiter() {
	r.println(strings.Repeat("-", 70))
}

// dense prints a matrix the way the coefficient tables are read by eye.
func (r *report) dense(d *mat.Dense) {
	fa := mat.Formatted(d, mat.Prefix("    "), mat.Squeeze())
	r.printf("    %.8f\n", fa)
}

// echo copies the input file into the report.
func (r *report) echo(path string) error {
	lines, err := readFileLines(path)
	if err != nil {
		return err
	}
	r.println("Input file content:")
	r.delimiter()
	for _, l := range lines {
		r.println(l)
	}
	r.delimiter()
	return nil
}

func (r *report) memStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	r.println("Memory usage:")
	r.printf("Alloc: %d bytes\n", memStats.Alloc)
	r.printf("TotalAlloc: %d bytes\n", memStats.TotalAlloc)
	r.printf("HeapAlloc: %d bytes\n", memStats.HeapAlloc)
	r.printf("HeapSys: %d bytes\n", memStats.HeapSys)
	r.delimiter()
}

func readFileLines(fname string) ([]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var result []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}
