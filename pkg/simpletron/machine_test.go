package simpletron

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"simplec/pkg/asm"
	"simplec/pkg/sml"
)

func assemble(src string) []sml.Word {
	words, _, err := asm.Assemble(src)
	Expect(err).NotTo(HaveOccurred())
	return words
}

var _ = Describe("Machine", func() {
	var (
		mockCtrl *gomock.Controller
		keyboard *MockKeyboard
		printer  *MockPrinter
		m        *Machine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		keyboard = NewMockKeyboard(mockCtrl)
		printer = NewMockPrinter(mockCtrl)
		m = NewMachine(keyboard, printer)
		m.MaxSteps = 1000
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	run := func(src string) error {
		Expect(m.Load(assemble(src))).To(Succeed())
		return m.Run()
	}

	Describe("Load", func() {
		It("should reject programs larger than memory", func() {
			Expect(m.Load(make([]sml.Word, 101))).NotTo(Succeed())
		})

		It("should reject words outside the word range", func() {
			Expect(m.Load([]sml.Word{10000})).NotTo(Succeed())
		})

		It("should reset registers", func() {
			m.Accumulator = 12
			m.IC = 40
			m.Halted = true
			Expect(m.Load([]sml.Word{4300})).To(Succeed())
			Expect(m.Accumulator).To(Equal(sml.Word(0)))
			Expect(m.IC).To(Equal(0))
			Expect(m.Halted).To(BeFalse())
		})
	})

	Context("Input and output", func() {
		It("should read a word and print it back", func() {
			keyboard.EXPECT().ReadLine(DefaultPrompt).Return(" 7 ", nil)
			printer.EXPECT().Print(sml.Word(7)).Return(nil)

			Expect(run("READ n\nWRITE n\nHALT\nn: DATA 0")).To(Succeed())
			Expect(m.Memory[3]).To(Equal(sml.Word(7)))
		})

		It("should prompt again after invalid input", func() {
			gomock.InOrder(
				keyboard.EXPECT().ReadLine(DefaultPrompt).Return("abc", nil),
				keyboard.EXPECT().ReadLine(DefaultPrompt).Return("10000", nil),
				keyboard.EXPECT().ReadLine(DefaultPrompt).Return("-9999", nil),
			)

			Expect(run("READ 02\nHALT")).To(Succeed())
			Expect(m.Memory[2]).To(Equal(sml.Word(-9999)))
		})

		It("should fail when the keyboard runs dry", func() {
			keyboard.EXPECT().ReadLine(gomock.Any()).Return("", io.EOF)

			err := run("READ 02\nHALT")
			Expect(errors.Is(err, io.EOF)).To(BeTrue())
		})

		It("should report a printer failure", func() {
			printer.EXPECT().Print(gomock.Any()).Return(errors.New("paper jam"))

			err := run("WRITE 00\nHALT")
			Expect(err).To(MatchError(ContainSubstring("paper jam")))
		})
	})

	Context("Arithmetic", func() {
		DescribeTable("should leave the result in the accumulator",
			func(op string, a, b, want int) {
				m.Memory[90] = sml.Word(a)
				program := assemble("LOAD 90\n" + op + " 91\nHALT")
				copy(m.Memory[:], program)
				m.Memory[91] = sml.Word(b)
				Expect(m.Run()).To(Succeed())
				Expect(m.Accumulator).To(Equal(sml.Word(want)))
			},
			Entry("ADD", "ADD", 20, 22, 42),
			Entry("SUBTRACT", "SUBTRACT", 5, 9, -4),
			Entry("MULTIPLY", "MULTIPLY", -6, 7, -42),
			Entry("DIVIDE truncates", "DIVIDE", -7, 2, -3),
			Entry("MODULO keeps the dividend sign", "MODULO", -7, 2, -1),
		)

		It("should fault on overflow", func() {
			err := run("LOAD a\nMULTIPLY a\nHALT\na: DATA 100")

			var me *MachineError
			Expect(errors.As(err, &me)).To(BeTrue())
			Expect(me.Err).To(MatchError(ErrOverflow))
			Expect(me.IC).To(Equal(1))
			Expect(me.Word).To(Equal(sml.Word(3303)))
			Expect(m.Halted).To(BeTrue())
		})

		It("should fault on division by zero", func() {
			err := run("LOAD 03\nDIVIDE 04\nHALT\nDATA 9\nDATA 0")
			Expect(err).To(MatchError(ErrDivideByZero))
		})

		It("should fault on modulo by zero", func() {
			err := run("MODULO 02\nHALT\nDATA 0")
			Expect(err).To(MatchError(ErrDivideByZero))
		})
	})

	Context("Control flow", func() {
		It("should loop until the counter reaches zero", func() {
			printer.EXPECT().Print(gomock.Any()).Return(nil).Times(3)

			err := run(
				"loop: LOAD n\n" +
					"      BRANCHZERO done\n" +
					"      WRITE n\n" +
					"      SUBTRACT one\n" +
					"      STORE n\n" +
					"      BRANCH loop\n" +
					"done: HALT\n" +
					"n:    DATA 3\n" +
					"one:  DATA 1\n")
			Expect(err).To(Succeed())
			Expect(m.Memory[7]).To(Equal(sml.Word(0)))
		})

		It("should take BRANCHNEG only on a negative accumulator", func() {
			Expect(run("LOAD m\nBRANCHNEG neg\nHALT\nneg: LOAD z\nHALT\nm: DATA -1\nz: DATA 0")).To(Succeed())
			Expect(m.IC).To(Equal(4))
		})

		It("should log only the branches it takes", func() {
			var logs bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
			DeferCleanup(func() { slog.SetDefault(prev) })

			Expect(run("LOAD z\nBRANCHNEG 00\nBRANCHZERO done\nHALT\ndone: HALT\nz: DATA 0")).To(Succeed())
			Expect(m.IC).To(Equal(4))
			Expect(logs.String()).To(ContainSubstring("simpletron: branch"))
			Expect(logs.String()).To(ContainSubstring("from=2 to=4"))
			Expect(logs.String()).NotTo(ContainSubstring("from=1"))
		})

		It("should stop at HALT without advancing", func() {
			Expect(run("HALT")).To(Succeed())
			Expect(m.IC).To(Equal(0))
			Expect(m.Step()).To(Succeed())
			Expect(m.Steps).To(Equal(1))
		})

		It("should fault on an unknown operation code", func() {
			err := run("DATA 5000")
			Expect(err).To(MatchError(ErrUnknownOpcode))
		})

		It("should fault on a negative instruction word", func() {
			err := run("DATA -2005")
			Expect(err).To(MatchError(ErrUnknownOpcode))
		})

		It("should fault when running past the last cell", func() {
			m.Memory[0] = 4099
			m.Memory[99] = 2000
			Expect(m.Run()).To(MatchError(ErrAddress))
			Expect(m.IC).To(Equal(100))
		})

		It("should stop at the step limit", func() {
			m.MaxSteps = 10
			Expect(run("BRANCH 00")).To(MatchError(ErrStepLimit))
			Expect(m.Steps).To(Equal(10))
		})
	})

	Describe("Dump", func() {
		It("should print registers and memory", func() {
			Expect(run("LOAD 02\nHALT\nDATA -5")).To(Succeed())

			var buf bytes.Buffer
			Expect(m.Dump(&buf)).To(Succeed())
			out := buf.String()
			Expect(out).To(ContainSubstring("accumulator"))
			Expect(out).To(ContainSubstring("-0005"))
			Expect(out).To(ContainSubstring("+4300"))
			Expect(out).To(ContainSubstring("instructionCounter"))
		})
	})
})
