package sstpack_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bsm/sstpack"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var dir, path string
	var subject *sstpack.Writer
	var testdata = []byte("testdata")

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "sstpack-writer")
		Expect(err).NotTo(HaveOccurred())

		path = filepath.Join(dir, "table.sst")
		subject, err = sstpack.Create(path, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		subject.Abort()
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	fileSize := func() int64 {
		fi, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		return fi.Size()
	}

	It("should write empty", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumEntries()).To(Equal(0))

		r, err := sstpack.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		Expect(r.NumEntries()).To(BeZero())
		_, _, ok, err := r.Bounds()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should prevent out-of-order appends", func() {
		Expect(subject.Append([]byte("k20"), testdata)).To(Succeed())
		Expect(subject.Append([]byte("k19"), testdata)).To(MatchError(`sstpack: attempted an out-of-order append, "k19" must be > "k20"`))
		Expect(subject.Append([]byte("k22"), testdata)).To(Succeed())
		Expect(subject.Append([]byte("k20"), testdata)).To(MatchError(`sstpack: attempted an out-of-order append, "k20" must be > "k22"`))
		Expect(subject.Append([]byte("k23"), testdata)).To(Succeed())
		Expect(subject.Append([]byte("k23"), testdata)).To(MatchError(`sstpack: attempted an out-of-order append, "k23" must be > "k23"`))
		Expect(subject.Append([]byte("k24"), testdata)).To(Succeed())
		Expect(subject.NumEntries()).To(Equal(4))

		Expect(subject.Close()).To(Succeed())
		Expect(readTable(path)).To(Equal([]kv{
			{"k20", "testdata"},
			{"k22", "testdata"},
			{"k23", "testdata"},
			{"k24", "testdata"},
		}))
	})

	It("should not accept appends after close", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(subject.Append([]byte("k1"), testdata)).To(MatchError(`sstpack: is closed`))
		Expect(subject.Close()).To(MatchError(`sstpack: is closed`))
	})

	It("should write (non-compressable)", func() {
		rnd := rand.New(rand.NewSource(1))
		val := make([]byte, 128)

		for i := 0; i < 50000; i++ {
			_, err := rnd.Read(val)
			Expect(err).NotTo(HaveOccurred())
			Expect(subject.Append([]byte(fmt.Sprintf("%08d", i*2)), val)).To(Succeed())
		}
		Expect(subject.Close()).To(Succeed())
		Expect(fileSize()).To(BeNumerically(">", 50000*128))

		r, err := sstpack.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()
		Expect(r.NumEntries()).To(BeEquivalentTo(50000))
	})

	It("should write (well-compressable)", func() {
		val := bytes.Repeat(testdata, 16)
		for i := 0; i < 50000; i++ {
			Expect(subject.Append([]byte(fmt.Sprintf("%08d", i*2)), val)).To(Succeed())
		}
		Expect(subject.Close()).To(Succeed())
		Expect(fileSize()).To(BeNumerically("<", 50000*len(val)/4))
	})

	It("should honour compression options", func() {
		plain := filepath.Join(dir, "plain.sst")
		w, err := sstpack.Create(plain, &sstpack.WriterOptions{Compression: sstpack.NoCompression})
		Expect(err).NotTo(HaveOccurred())

		val := bytes.Repeat(testdata, 16)
		for i := 0; i < 1000; i++ {
			key := []byte(fmt.Sprintf("%08d", i))
			Expect(w.Append(key, val)).To(Succeed())
			Expect(subject.Append(key, val)).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())
		Expect(subject.Close()).To(Succeed())

		fi, err := os.Stat(plain)
		Expect(err).NotTo(HaveOccurred())
		Expect(fileSize()).To(BeNumerically("<", fi.Size()))
	})

	It("should release resources on abort", func() {
		before := runtime.NumGoroutine()
		for i := 0; i < 20; i++ {
			w, err := sstpack.Create(filepath.Join(dir, fmt.Sprintf("aborted-%02d.sst", i)), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Append([]byte("k1"), testdata)).To(Succeed())
			w.Abort()
			w.Abort()
			Expect(w.Append([]byte("k2"), testdata)).To(MatchError(`sstpack: is closed`))
		}
		Eventually(runtime.NumGoroutine).Should(BeNumerically("<=", before))
	})

	It("should parse compression names", func() {
		Expect(sstpack.ParseCompression("")).To(Equal(sstpack.SnappyCompression))
		Expect(sstpack.ParseCompression("snappy")).To(Equal(sstpack.SnappyCompression))
		Expect(sstpack.ParseCompression("none")).To(Equal(sstpack.NoCompression))
		Expect(sstpack.ParseCompression("zstd")).To(Equal(sstpack.ZstdCompression))

		_, err := sstpack.ParseCompression("lz4")
		Expect(err).To(MatchError(`sstpack: unknown compression "lz4"`))
	})
})
