package bytecode

const (
	OpNop             Opcode = 0
	OpAconstNull      Opcode = 1
	OpIconstM1        Opcode = 2
	OpIconst0         Opcode = 3
	OpIconst1         Opcode = 4
	OpIconst2         Opcode = 5
	OpIconst3         Opcode = 6
	OpIconst4         Opcode = 7
	OpIconst5         Opcode = 8
	OpLconst0         Opcode = 9
	OpLconst1         Opcode = 10
	OpFconst0         Opcode = 11
	OpFconst1         Opcode = 12
	OpFconst2         Opcode = 13
	OpDconst0         Opcode = 14
	OpDconst1         Opcode = 15
	OpBipush          Opcode = 16
	OpSipush          Opcode = 17
	OpLdc             Opcode = 18
	OpLdcW            Opcode = 19
	OpLdc2W           Opcode = 20
	OpIload           Opcode = 21
	OpLload           Opcode = 22
	OpFload           Opcode = 23
	OpDload           Opcode = 24
	OpAload           Opcode = 25
	OpIload0          Opcode = 26
	OpIload1          Opcode = 27
	OpIload2          Opcode = 28
	OpIload3          Opcode = 29
	OpLload0          Opcode = 30
	OpLload1          Opcode = 31
	OpLload2          Opcode = 32
	OpLload3          Opcode = 33
	OpFload0          Opcode = 34
	OpFload1          Opcode = 35
	OpFload2          Opcode = 36
	OpFload3          Opcode = 37
	OpDload0          Opcode = 38
	OpDload1          Opcode = 39
	OpDload2          Opcode = 40
	OpDload3          Opcode = 41
	OpAload0          Opcode = 42
	OpAload1          Opcode = 43
	OpAload2          Opcode = 44
	OpAload3          Opcode = 45
	OpIaload          Opcode = 46
	OpLaload          Opcode = 47
	OpFaload          Opcode = 48
	OpDaload          Opcode = 49
	OpAaload          Opcode = 50
	OpBaload          Opcode = 51
	OpCaload          Opcode = 52
	OpSaload          Opcode = 53
	OpIstore          Opcode = 54
	OpLstore          Opcode = 55
	OpFstore          Opcode = 56
	OpDstore          Opcode = 57
	OpAstore          Opcode = 58
	OpIstore0         Opcode = 59
	OpIstore1         Opcode = 60
	OpIstore2         Opcode = 61
	OpIstore3         Opcode = 62
	OpLstore0         Opcode = 63
	OpLstore1         Opcode = 64
	OpLstore2         Opcode = 65
	OpLstore3         Opcode = 66
	OpFstore0         Opcode = 67
	OpFstore1         Opcode = 68
	OpFstore2         Opcode = 69
	OpFstore3         Opcode = 70
	OpDstore0         Opcode = 71
	OpDstore1         Opcode = 72
	OpDstore2         Opcode = 73
	OpDstore3         Opcode = 74
	OpAstore0         Opcode = 75
	OpAstore1         Opcode = 76
	OpAstore2         Opcode = 77
	OpAstore3         Opcode = 78
	OpIastore         Opcode = 79
	OpLastore         Opcode = 80
	OpFastore         Opcode = 81
	OpDastore         Opcode = 82
	OpAastore         Opcode = 83
	OpBastore         Opcode = 84
	OpCastore         Opcode = 85
	OpSastore         Opcode = 86
	OpPop             Opcode = 87
	OpPop2            Opcode = 88
	OpDup             Opcode = 89
	OpDupX1           Opcode = 90
	OpDupX2           Opcode = 91
	OpDup2            Opcode = 92
	OpDup2X1          Opcode = 93
	OpDup2X2          Opcode = 94
	OpSwap            Opcode = 95
	OpIadd            Opcode = 96
	OpLadd            Opcode = 97
	OpFadd            Opcode = 98
	OpDadd            Opcode = 99
	OpIsub            Opcode = 100
	OpLsub            Opcode = 101
	OpFsub            Opcode = 102
	OpDsub            Opcode = 103
	OpImul            Opcode = 104
	OpLmul            Opcode = 105
	OpFmul            Opcode = 106
	OpDmul            Opcode = 107
	OpIdiv            Opcode = 108
	OpLdiv            Opcode = 109
	OpFdiv            Opcode = 110
	OpDdiv            Opcode = 111
	OpIrem            Opcode = 112
	OpLrem            Opcode = 113
	OpFrem            Opcode = 114
	OpDrem            Opcode = 115
	OpIneg            Opcode = 116
	OpLneg            Opcode = 117
	OpFneg            Opcode = 118
	OpDneg            Opcode = 119
	OpIshl            Opcode = 120
	OpLshl            Opcode = 121
	OpIshr            Opcode = 122
	OpLshr            Opcode = 123
	OpIushr           Opcode = 124
	OpLushr           Opcode = 125
	OpIand            Opcode = 126
	OpLand            Opcode = 127
	OpIor             Opcode = 128
	OpLor             Opcode = 129
	OpIxor            Opcode = 130
	OpLxor            Opcode = 131
	OpIinc            Opcode = 132
	OpI2l             Opcode = 133
	OpI2f             Opcode = 134
	OpI2d             Opcode = 135
	OpL2i             Opcode = 136
	OpL2f             Opcode = 137
	OpL2d             Opcode = 138
	OpF2i             Opcode = 139
	OpF2l             Opcode = 140
	OpF2d             Opcode = 141
	OpD2i             Opcode = 142
	OpD2l             Opcode = 143
	OpD2f             Opcode = 144
	OpI2b             Opcode = 145
	OpI2c             Opcode = 146
	OpI2s             Opcode = 147
	OpLcmp            Opcode = 148
	OpFcmpl           Opcode = 149
	OpFcmpg           Opcode = 150
	OpDcmpl           Opcode = 151
	OpDcmpg           Opcode = 152
	OpIfeq            Opcode = 153
	OpIfne            Opcode = 154
	OpIflt            Opcode = 155
	OpIfge            Opcode = 156
	OpIfgt            Opcode = 157
	OpIfle            Opcode = 158
	OpIfIcmpeq        Opcode = 159
	OpIfIcmpne        Opcode = 160
	OpIfIcmplt        Opcode = 161
	OpIfIcmpge        Opcode = 162
	OpIfIcmpgt        Opcode = 163
	OpIfIcmple        Opcode = 164
	OpIfAcmpeq        Opcode = 165
	OpIfAcmpne        Opcode = 166
	OpGoto            Opcode = 167
	OpJsr             Opcode = 168
	OpRet             Opcode = 169
	OpTableswitch     Opcode = 170
	OpLookupswitch    Opcode = 171
	OpIreturn         Opcode = 172
	OpLreturn         Opcode = 173
	OpFreturn         Opcode = 174
	OpDreturn         Opcode = 175
	OpAreturn         Opcode = 176
	OpReturn          Opcode = 177
	OpGetstatic       Opcode = 178
	OpPutstatic       Opcode = 179
	OpGetfield        Opcode = 180
	OpPutfield        Opcode = 181
	OpInvokevirtual   Opcode = 182
	OpInvokespecial   Opcode = 183
	OpInvokestatic    Opcode = 184
	OpInvokeinterface Opcode = 185
	OpInvokedynamic   Opcode = 186
	OpNew             Opcode = 187
	OpNewarray        Opcode = 188
	OpAnewarray       Opcode = 189
	OpArraylength     Opcode = 190
	OpAthrow          Opcode = 191
	OpCheckcast       Opcode = 192
	OpInstanceof      Opcode = 193
	OpMonitorenter    Opcode = 194
	OpMonitorexit     Opcode = 195
	OpWide            Opcode = 196
	OpMultianewarray  Opcode = 197
	OpIfnull          Opcode = 198
	OpIfnonnull       Opcode = 199
	OpGotoW           Opcode = 200
	OpJsrW            Opcode = 201
)

var opcodeNames = [...]string{
	OpNop:             "nop",
	OpAconstNull:      "aconst_null",
	OpIconstM1:        "iconst_m1",
	OpIconst0:         "iconst_0",
	OpIconst1:         "iconst_1",
	OpIconst2:         "iconst_2",
	OpIconst3:         "iconst_3",
	OpIconst4:         "iconst_4",
	OpIconst5:         "iconst_5",
	OpLconst0:         "lconst_0",
	OpLconst1:         "lconst_1",
	OpFconst0:         "fconst_0",
	OpFconst1:         "fconst_1",
	OpFconst2:         "fconst_2",
	OpDconst0:         "dconst_0",
	OpDconst1:         "dconst_1",
	OpBipush:          "bipush",
	OpSipush:          "sipush",
	OpLdc:             "ldc",
	OpLdcW:            "ldc_w",
	OpLdc2W:           "ldc2_w",
	OpIload:           "iload",
	OpLload:           "lload",
	OpFload:           "fload",
	OpDload:           "dload",
	OpAload:           "aload",
	OpIload0:          "iload_0",
	OpIload1:          "iload_1",
	OpIload2:          "iload_2",
	OpIload3:          "iload_3",
	OpLload0:          "lload_0",
	OpLload1:          "lload_1",
	OpLload2:          "lload_2",
	OpLload3:          "lload_3",
	OpFload0:          "fload_0",
	OpFload1:          "fload_1",
	OpFload2:          "fload_2",
	OpFload3:          "fload_3",
	OpDload0:          "dload_0",
	OpDload1:          "dload_1",
	OpDload2:          "dload_2",
	OpDload3:          "dload_3",
	OpAload0:          "aload_0",
	OpAload1:          "aload_1",
	OpAload2:          "aload_2",
	OpAload3:          "aload_3",
	OpIaload:          "iaload",
	OpLaload:          "laload",
	OpFaload:          "faload",
	OpDaload:          "daload",
	OpAaload:          "aaload",
	OpBaload:          "baload",
	OpCaload:          "caload",
	OpSaload:          "saload",
	OpIstore:          "istore",
	OpLstore:          "lstore",
	OpFstore:          "fstore",
	OpDstore:          "dstore",
	OpAstore:          "astore",
	OpIstore0:         "istore_0",
	OpIstore1:         "istore_1",
	OpIstore2:         "istore_2",
	OpIstore3:         "istore_3",
	OpLstore0:         "lstore_0",
	OpLstore1:         "lstore_1",
	OpLstore2:         "lstore_2",
	OpLstore3:         "lstore_3",
	OpFstore0:         "fstore_0",
	OpFstore1:         "fstore_1",
	OpFstore2:         "fstore_2",
	OpFstore3:         "fstore_3",
	OpDstore0:         "dstore_0",
	OpDstore1:         "dstore_1",
	OpDstore2:         "dstore_2",
	OpDstore3:         "dstore_3",
	OpAstore0:         "astore_0",
	OpAstore1:         "astore_1",
	OpAstore2:         "astore_2",
	OpAstore3:         "astore_3",
	OpIastore:         "iastore",
	OpLastore:         "lastore",
	OpFastore:         "fastore",
	OpDastore:         "dastore",
	OpAastore:         "aastore",
	OpBastore:         "bastore",
	OpCastore:         "castore",
	OpSastore:         "sastore",
	OpPop:             "pop",
	OpPop2:            "pop2",
	OpDup:             "dup",
	OpDupX1:           "dup_x1",
	OpDupX2:           "dup_x2",
	OpDup2:            "dup2",
	OpDup2X1:          "dup2_x1",
	OpDup2X2:          "dup2_x2",
	OpSwap:            "swap",
	OpIadd:            "iadd",
	OpLadd:            "ladd",
	OpFadd:            "fadd",
	OpDadd:            "dadd",
	OpIsub:            "isub",
	OpLsub:            "lsub",
	OpFsub:            "fsub",
	OpDsub:            "dsub",
	OpImul:            "imul",
	OpLmul:            "lmul",
	OpFmul:            "fmul",
	OpDmul:            "dmul",
	OpIdiv:            "idiv",
	OpLdiv:            "ldiv",
	OpFdiv:            "fdiv",
	OpDdiv:            "ddiv",
	OpIrem:            "irem",
	OpLrem:            "lrem",
	OpFrem:            "frem",
	OpDrem:            "drem",
	OpIneg:            "ineg",
	OpLneg:            "lneg",
	OpFneg:            "fneg",
	OpDneg:            "dneg",
	OpIshl:            "ishl",
	OpLshl:            "lshl",
	OpIshr:            "ishr",
	OpLshr:            "lshr",
	OpIushr:           "iushr",
	OpLushr:           "lushr",
	OpIand:            "iand",
	OpLand:            "land",
	OpIor:             "ior",
	OpLor:             "lor",
	OpIxor:            "ixor",
	OpLxor:            "lxor",
	OpIinc:            "iinc",
	OpI2l:             "i2l",
	OpI2f:             "i2f",
	OpI2d:             "i2d",
	OpL2i:             "l2i",
	OpL2f:             "l2f",
	OpL2d:             "l2d",
	OpF2i:             "f2i",
	OpF2l:             "f2l",
	OpF2d:             "f2d",
	OpD2i:             "d2i",
	OpD2l:             "d2l",
	OpD2f:             "d2f",
	OpI2b:             "i2b",
	OpI2c:             "i2c",
	OpI2s:             "i2s",
	OpLcmp:            "lcmp",
	OpFcmpl:           "fcmpl",
	OpFcmpg:           "fcmpg",
	OpDcmpl:           "dcmpl",
	OpDcmpg:           "dcmpg",
	OpIfeq:            "ifeq",
	OpIfne:            "ifne",
	OpIflt:            "iflt",
	OpIfge:            "ifge",
	OpIfgt:            "ifgt",
	OpIfle:            "ifle",
	OpIfIcmpeq:        "if_icmpeq",
	OpIfIcmpne:        "if_icmpne",
	OpIfIcmplt:        "if_icmplt",
	OpIfIcmpge:        "if_icmpge",
	OpIfIcmpgt:        "if_icmpgt",
	OpIfIcmple:        "if_icmple",
	OpIfAcmpeq:        "if_acmpeq",
	OpIfAcmpne:        "if_acmpne",
	OpGoto:            "goto",
	OpJsr:             "jsr",
	OpRet:             "ret",
	OpTableswitch:     "tableswitch",
	OpLookupswitch:    "lookupswitch",
	OpIreturn:         "ireturn",
	OpLreturn:         "lreturn",
	OpFreturn:         "freturn",
	OpDreturn:         "dreturn",
	OpAreturn:         "areturn",
	OpReturn:          "return",
	OpGetstatic:       "getstatic",
	OpPutstatic:       "putstatic",
	OpGetfield:        "getfield",
	OpPutfield:        "putfield",
	OpInvokevirtual:   "invokevirtual",
	OpInvokespecial:   "invokespecial",
	OpInvokestatic:    "invokestatic",
	OpInvokeinterface: "invokeinterface",
	OpInvokedynamic:   "invokedynamic",
	OpNew:             "new",
	OpNewarray:        "newarray",
	OpAnewarray:       "anewarray",
	OpArraylength:     "arraylength",
	OpAthrow:          "athrow",
	OpCheckcast:       "checkcast",
	OpInstanceof:      "instanceof",
	OpMonitorenter:    "monitorenter",
	OpMonitorexit:     "monitorexit",
	OpWide:            "wide",
	OpMultianewarray:  "multianewarray",
	OpIfnull:          "ifnull",
	OpIfnonnull:       "ifnonnull",
	OpGotoW:           "goto_w",
	OpJsrW:            "jsr_w",
}

var opcodeFormats = [...]Format{
	OpNop:             FormatNone,
	OpAconstNull:      FormatNone,
	OpIconstM1:        FormatNone,
	OpIconst0:         FormatNone,
	OpIconst1:         FormatNone,
	OpIconst2:         FormatNone,
	OpIconst3:         FormatNone,
	OpIconst4:         FormatNone,
	OpIconst5:         FormatNone,
	OpLconst0:         FormatNone,
	OpLconst1:         FormatNone,
	OpFconst0:         FormatNone,
	OpFconst1:         FormatNone,
	OpFconst2:         FormatNone,
	OpDconst0:         FormatNone,
	OpDconst1:         FormatNone,
	OpBipush:          FormatByte,
	OpSipush:          FormatShort,
	OpLdc:             FormatLdc,
	OpLdcW:            FormatLdcWide,
	OpLdc2W:           FormatLdcWide,
	OpIload:           FormatVar,
	OpLload:           FormatVar,
	OpFload:           FormatVar,
	OpDload:           FormatVar,
	OpAload:           FormatVar,
	OpIload0:          FormatVarImplicit,
	OpIload1:          FormatVarImplicit,
	OpIload2:          FormatVarImplicit,
	OpIload3:          FormatVarImplicit,
	OpLload0:          FormatVarImplicit,
	OpLload1:          FormatVarImplicit,
	OpLload2:          FormatVarImplicit,
	OpLload3:          FormatVarImplicit,
	OpFload0:          FormatVarImplicit,
	OpFload1:          FormatVarImplicit,
	OpFload2:          FormatVarImplicit,
	OpFload3:          FormatVarImplicit,
	OpDload0:          FormatVarImplicit,
	OpDload1:          FormatVarImplicit,
	OpDload2:          FormatVarImplicit,
	OpDload3:          FormatVarImplicit,
	OpAload0:          FormatVarImplicit,
	OpAload1:          FormatVarImplicit,
	OpAload2:          FormatVarImplicit,
	OpAload3:          FormatVarImplicit,
	OpIaload:          FormatNone,
	OpLaload:          FormatNone,
	OpFaload:          FormatNone,
	OpDaload:          FormatNone,
	OpAaload:          FormatNone,
	OpBaload:          FormatNone,
	OpCaload:          FormatNone,
	OpSaload:          FormatNone,
	OpIstore:          FormatVar,
	OpLstore:          FormatVar,
	OpFstore:          FormatVar,
	OpDstore:          FormatVar,
	OpAstore:          FormatVar,
	OpIstore0:         FormatVarImplicit,
	OpIstore1:         FormatVarImplicit,
	OpIstore2:         FormatVarImplicit,
	OpIstore3:         FormatVarImplicit,
	OpLstore0:         FormatVarImplicit,
	OpLstore1:         FormatVarImplicit,
	OpLstore2:         FormatVarImplicit,
	OpLstore3:         FormatVarImplicit,
	OpFstore0:         FormatVarImplicit,
	OpFstore1:         FormatVarImplicit,
	OpFstore2:         FormatVarImplicit,
	OpFstore3:         FormatVarImplicit,
	OpDstore0:         FormatVarImplicit,
	OpDstore1:         FormatVarImplicit,
	OpDstore2:         FormatVarImplicit,
	OpDstore3:         FormatVarImplicit,
	OpAstore0:         FormatVarImplicit,
	OpAstore1:         FormatVarImplicit,
	OpAstore2:         FormatVarImplicit,
	OpAstore3:         FormatVarImplicit,
	OpIastore:         FormatNone,
	OpLastore:         FormatNone,
	OpFastore:         FormatNone,
	OpDastore:         FormatNone,
	OpAastore:         FormatNone,
	OpBastore:         FormatNone,
	OpCastore:         FormatNone,
	OpSastore:         FormatNone,
	OpPop:             FormatNone,
	OpPop2:            FormatNone,
	OpDup:             FormatNone,
	OpDupX1:           FormatNone,
	OpDupX2:           FormatNone,
	OpDup2:            FormatNone,
	OpDup2X1:          FormatNone,
	OpDup2X2:          FormatNone,
	OpSwap:            FormatNone,
	OpIadd:            FormatNone,
	OpLadd:            FormatNone,
	OpFadd:            FormatNone,
	OpDadd:            FormatNone,
	OpIsub:            FormatNone,
	OpLsub:            FormatNone,
	OpFsub:            FormatNone,
	OpDsub:            FormatNone,
	OpImul:            FormatNone,
	OpLmul:            FormatNone,
	OpFmul:            FormatNone,
	OpDmul:            FormatNone,
	OpIdiv:            FormatNone,
	OpLdiv:            FormatNone,
	OpFdiv:            FormatNone,
	OpDdiv:            FormatNone,
	OpIrem:            FormatNone,
	OpLrem:            FormatNone,
	OpFrem:            FormatNone,
	OpDrem:            FormatNone,
	OpIneg:            FormatNone,
	OpLneg:            FormatNone,
	OpFneg:            FormatNone,
	OpDneg:            FormatNone,
	OpIshl:            FormatNone,
	OpLshl:            FormatNone,
	OpIshr:            FormatNone,
	OpLshr:            FormatNone,
	OpIushr:           FormatNone,
	OpLushr:           FormatNone,
	OpIand:            FormatNone,
	OpLand:            FormatNone,
	OpIor:             FormatNone,
	OpLor:             FormatNone,
	OpIxor:            FormatNone,
	OpLxor:            FormatNone,
	OpIinc:            FormatIinc,
	OpI2l:             FormatNone,
	OpI2f:             FormatNone,
	OpI2d:             FormatNone,
	OpL2i:             FormatNone,
	OpL2f:             FormatNone,
	OpL2d:             FormatNone,
	OpF2i:             FormatNone,
	OpF2l:             FormatNone,
	OpF2d:             FormatNone,
	OpD2i:             FormatNone,
	OpD2l:             FormatNone,
	OpD2f:             FormatNone,
	OpI2b:             FormatNone,
	OpI2c:             FormatNone,
	OpI2s:             FormatNone,
	OpLcmp:            FormatNone,
	OpFcmpl:           FormatNone,
	OpFcmpg:           FormatNone,
	OpDcmpl:           FormatNone,
	OpDcmpg:           FormatNone,
	OpIfeq:            FormatJump,
	OpIfne:            FormatJump,
	OpIflt:            FormatJump,
	OpIfge:            FormatJump,
	OpIfgt:            FormatJump,
	OpIfle:            FormatJump,
	OpIfIcmpeq:        FormatJump,
	OpIfIcmpne:        FormatJump,
	OpIfIcmplt:        FormatJump,
	OpIfIcmpge:        FormatJump,
	OpIfIcmpgt:        FormatJump,
	OpIfIcmple:        FormatJump,
	OpIfAcmpeq:        FormatJump,
	OpIfAcmpne:        FormatJump,
	OpGoto:            FormatJump,
	OpJsr:             FormatJump,
	OpRet:             FormatVar,
	OpTableswitch:     FormatTableSwitch,
	OpLookupswitch:    FormatLookupSwitch,
	OpIreturn:         FormatNone,
	OpLreturn:         FormatNone,
	OpFreturn:         FormatNone,
	OpDreturn:         FormatNone,
	OpAreturn:         FormatNone,
	OpReturn:          FormatNone,
	OpGetstatic:       FormatField,
	OpPutstatic:       FormatField,
	OpGetfield:        FormatField,
	OpPutfield:        FormatField,
	OpInvokevirtual:   FormatMethod,
	OpInvokespecial:   FormatMethod,
	OpInvokestatic:    FormatMethod,
	OpInvokeinterface: FormatInterfaceMethod,
	OpInvokedynamic:   FormatDynamic,
	OpNew:             FormatType,
	OpNewarray:        FormatNewArray,
	OpAnewarray:       FormatType,
	OpArraylength:     FormatNone,
	OpAthrow:          FormatNone,
	OpCheckcast:       FormatType,
	OpInstanceof:      FormatType,
	OpMonitorenter:    FormatNone,
	OpMonitorexit:     FormatNone,
	OpWide:            FormatWide,
	OpMultianewarray:  FormatMultiANewArray,
	OpIfnull:          FormatJump,
	OpIfnonnull:       FormatJump,
	OpGotoW:           FormatJumpWide,
	OpJsrW:            FormatJumpWide,
}
