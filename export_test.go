package sstpack_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bsm/sstpack"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Export", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "sstpack-export")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	for _, engine := range engines {
		engine := engine

		Context(string(engine), func() {
			var store, target string
			var opts *sstpack.Options

			BeforeEach(func() {
				store = filepath.Join(dir, "store")
				target = filepath.Join(dir, "out.sst")
				opts = &sstpack.Options{Engine: engine}
			})

			It("should export in key order", func() {
				Expect(seedStore(engine, store, kv{"c", "3"}, kv{"a", "1"}, kv{"b", "2"})).To(Succeed())
				Expect(sstpack.Export(store, target, opts)).To(Succeed())

				Expect(readTable(target)).To(Equal([]kv{{"a", "1"}, {"b", "2"}, {"c", "3"}}))
				Expect(target + ".tmp").NotTo(BeAnExistingFile())
			})

			It("should export empty stores", func() {
				Expect(seedStore(engine, store)).To(Succeed())
				Expect(sstpack.Export(store, target, opts)).To(Succeed())

				r, err := sstpack.Open(target)
				Expect(err).NotTo(HaveOccurred())
				defer r.Close()
				Expect(r.NumEntries()).To(BeZero())
			})

			It("should round-trip", func() {
				pairs := seedPairs(2000)
				Expect(seedStore(engine, store, pairs...)).To(Succeed())
				Expect(sstpack.Export(store, target, opts)).To(Succeed())

				restored := filepath.Join(dir, "restored")
				Expect(sstpack.Import(restored, target, opts)).To(Succeed())
				Expect(dumpStore(engine, restored)).To(Equal(pairs))
			})

			It("should fail on missing stores", func() {
				err := sstpack.Export(store, target, opts)
				Expect(sstpack.IsKind(err, sstpack.KindOpen)).To(BeTrue(), "for %v", err)
				Expect(target).NotTo(BeAnExistingFile())
				Expect(target + ".tmp").NotTo(BeAnExistingFile())
			})
		})
	}

	It("should reject existing targets", func() {
		store := filepath.Join(dir, "store")
		target := filepath.Join(dir, "out.sst")
		Expect(seedStore(sstpack.EnginePebble, store, kv{"a", "1"})).To(Succeed())
		Expect(ioutil.WriteFile(target, []byte("keep"), 0o644)).To(Succeed())

		err := sstpack.Export(store, target, nil)
		Expect(sstpack.IsKind(err, sstpack.KindWrite)).To(BeTrue(), "for %v", err)
		Expect(errors.Is(err, sstpack.ErrTargetExists)).To(BeTrue())
		Expect(ioutil.ReadFile(target)).To(Equal([]byte("keep")))

		Expect(sstpack.Export(store, target, &sstpack.Options{Overwrite: true})).To(Succeed())
		Expect(readTable(target)).To(Equal([]kv{{"a", "1"}}))
	})

	It("should validate arguments", func() {
		err := sstpack.Export("", filepath.Join(dir, "out.sst"), nil)
		Expect(sstpack.IsKind(err, sstpack.KindArgument)).To(BeTrue())

		err = sstpack.Export(filepath.Join(dir, "store"), "", nil)
		Expect(sstpack.IsKind(err, sstpack.KindArgument)).To(BeTrue())
		Expect(err).To(MatchError(`sstpack: export : invalid argument: path is required`))
	})

	It("should reject unknown engines", func() {
		err := sstpack.Export(filepath.Join(dir, "store"), filepath.Join(dir, "out.sst"), &sstpack.Options{Engine: "rocksdb"})
		Expect(sstpack.IsKind(err, sstpack.KindOpen)).To(BeTrue())
		Expect(errors.Is(err, sstpack.ErrUnknownEngine)).To(BeTrue())
	})

	It("should fail on unwritable targets", func() {
		store := filepath.Join(dir, "store")
		Expect(seedStore(sstpack.EnginePebble, store, kv{"a", "1"})).To(Succeed())

		err := sstpack.Export(store, filepath.Join(dir, "missing", "out.sst"), nil)
		Expect(sstpack.IsKind(err, sstpack.KindWrite)).To(BeTrue(), "for %v", err)
	})
})
